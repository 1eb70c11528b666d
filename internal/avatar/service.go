// Package avatar normalizes uploaded profile images and stores them.
package avatar

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/jpeg"
	"image/png"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/image/draw"
)

// Size is the edge length of every stored avatar
const Size = 250

// The extension check is a filename gate only; content is validated by decoding.
var imageExt = regexp.MustCompile(`\.(png|jpg|jpeg)$`)

// Store persists normalized avatars keyed by user id
type Store interface {
	Put(ctx context.Context, userID uuid.UUID, data []byte) error
	// Get returns ErrNotFound when no avatar is stored
	Get(ctx context.Context, userID uuid.UUID) ([]byte, error)
	// Delete is a no-op when no avatar is stored
	Delete(ctx context.Context, userID uuid.UUID) error
}

type Service struct {
	store     Store
	maxBytes  int64
	maxPixels int
}

// NewService rejects uploads over maxBytes and images whose declared
// width*height exceeds maxPixels
func NewService(store Store, maxBytes int64, maxPixels int) *Service {
	return &Service{store: store, maxBytes: maxBytes, maxPixels: maxPixels}
}

// Set validates, resizes to Size x Size and stores raw as the user's
// avatar, replacing any previous one. Nothing is stored on rejection.
func (s *Service) Set(ctx context.Context, userID uuid.UUID, filename string, raw []byte) error {
	if int64(len(raw)) > s.maxBytes {
		return ErrTooLarge
	}

	if !imageExt.MatchString(strings.ToLower(filename)) {
		return ErrNotAnImage
	}

	normalized, err := Normalize(raw, s.maxPixels)
	if err != nil {
		return err
	}

	if err := s.store.Put(ctx, userID, normalized); err != nil {
		return fmt.Errorf("failed to store avatar: %w", err)
	}

	return nil
}

func (s *Service) Get(ctx context.Context, userID uuid.UUID) ([]byte, error) {
	return s.store.Get(ctx, userID)
}

func (s *Service) Clear(ctx context.Context, userID uuid.UUID) error {
	if err := s.store.Delete(ctx, userID); err != nil {
		return fmt.Errorf("failed to clear avatar: %w", err)
	}
	return nil
}

// Normalize decodes a PNG or JPEG image, stretches it to Size x Size and
// re-encodes it as PNG. The header is checked against maxPixels before any
// pixel data is decoded.
func Normalize(raw []byte, maxPixels int) ([]byte, error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(raw))
	if err != nil {
		return nil, ErrUndecodable
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, ErrUndecodable
	}
	if int64(cfg.Width)*int64(cfg.Height) > int64(maxPixels) {
		return nil, ErrDimensionsTooLarge
	}

	src, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, ErrUndecodable
	}

	dst := image.NewRGBA(image.Rect(0, 0, Size, Size))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Over, nil)

	var buf bytes.Buffer
	if err := png.Encode(&buf, dst); err != nil {
		return nil, fmt.Errorf("failed to encode avatar: %w", err)
	}

	return buf.Bytes(), nil
}
