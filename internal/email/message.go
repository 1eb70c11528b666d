package email

import (
	"bytes"
	"fmt"
	"html/template"
)

// Message is a rendered email ready for a Transport
type Message struct {
	To      string
	Name    string
	Subject string
	Text    string
	HTML    string
}

const (
	welcomeSubject      = "welcome to the app"
	cancellationSubject = "cancelation confirmation"
)

var layout = template.Must(template.New("layout").Parse(`
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <style>
        body {
            font-family: Arial, sans-serif;
            line-height: 1.6;
            color: #333;
            max-width: 600px;
            margin: 0 auto;
            padding: 20px;
        }
        .header {
            background-color: #4F46E5;
            color: white;
            padding: 20px;
            text-align: center;
            border-radius: 5px 5px 0 0;
        }
        .content {
            background-color: #f9f9f9;
            padding: 30px;
            border-radius: 0 0 5px 5px;
        }
    </style>
</head>
<body>
    <div class="header">
        <h1>{{.Heading}}</h1>
    </div>
    <div class="content">
        <p>{{.Body}}</p>
    </div>
</body>
</html>
`))

// WelcomeMessage is sent after a successful registration
func WelcomeMessage(to, name string) (Message, error) {
	text := fmt.Sprintf("Welcome to the app, %s, let us know how are you getting along", name)
	return render(to, name, welcomeSubject, "Welcome!", text)
}

// CancellationMessage is sent after an account is deleted
func CancellationMessage(to, name string) (Message, error) {
	text := fmt.Sprintf("We are sorry to see you go, %s", name)
	return render(to, name, cancellationSubject, "Goodbye", text)
}

func render(to, name, subject, heading, text string) (Message, error) {
	var buf bytes.Buffer
	data := struct {
		Heading string
		Body    string
	}{
		Heading: heading,
		Body:    text,
	}

	if err := layout.Execute(&buf, data); err != nil {
		return Message{}, fmt.Errorf("execute template: %w", err)
	}

	return Message{
		To:      to,
		Name:    name,
		Subject: subject,
		Text:    text,
		HTML:    buf.String(),
	}, nil
}
