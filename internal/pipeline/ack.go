package pipeline

import (
	"fmt"
	"strings"

	"quotedesk/internal"
	"quotedesk/internal/pricebook"
	"quotedesk/internal/util"
)

const maxClarifyingQuestions = 2

// DraftAcknowledgment composes the reply draft for an inquiry: what was
// understood, at most two clarifying questions for missing data, and the SLA.
func DraftAcknowledgment(event internal.ParsedEvent, settings pricebook.Settings) internal.AckDraft {
	to := "customer"
	if event.From.Value != nil {
		to = *event.From.Value
	}
	subject := "your inquiry"
	if event.Subject.Value != nil {
		subject = *event.Subject.Value
	}

	lines := []string{greeting(to), ""}

	if len(event.Items) > 0 {
		descriptions := make([]string, 0, len(event.Items))
		for _, item := range event.Items {
			if item.ProductName.Value == nil {
				continue
			}
			name := *item.ProductName.Value
			if item.Quantity.Value != nil {
				descriptions = append(descriptions, fmt.Sprintf("%d %s(s)", *item.Quantity.Value, name))
			} else {
				descriptions = append(descriptions, name)
			}
		}
		lines = append(lines, fmt.Sprintf("Thank you for reaching out to us regarding %s.", strings.Join(descriptions, ", ")))
	} else {
		lines = append(lines, "Thank you for your inquiry.")
	}

	questions := clarifyingQuestions(event.MissingFields)
	if len(questions) > 0 {
		lines = append(lines, "", "To help us prepare an accurate quote, could you please clarify the following:")
		for _, q := range questions {
			lines = append(lines, "- "+q)
		}
	}

	lines = append(lines, "",
		fmt.Sprintf("We aim to get back to you with a full quote within %d hours.", settings.SLAHours),
		"", "Kind regards,", "Sales Team")

	return internal.AckDraft{
		EmailID:       event.EmailID,
		To:            to,
		Subject:       "Re: " + subject,
		Body:          strings.Join(lines, "\n"),
		MissingFields: event.MissingFields,
		Questions:     questions,
	}
}

func greeting(to string) string {
	name := to
	if at := strings.Index(to, "@"); at > 0 {
		name = to[:at]
	}
	if name == "" {
		return "Hello,"
	}
	return fmt.Sprintf("Hello %s,", util.TitleCase(name))
}

func clarifyingQuestions(missingFields []string) []string {
	questions := []string{}
	for _, field := range missingFields {
		if len(questions) >= maxClarifyingQuestions {
			break
		}
		switch {
		case strings.HasPrefix(field, "quantity for "):
			product := strings.TrimPrefix(field, "quantity for ")
			questions = append(questions, fmt.Sprintf("Could you please confirm the quantity required for %s?", product))
		case strings.HasPrefix(field, "price for "):
			product := strings.TrimPrefix(field, "price for ")
			questions = append(questions, fmt.Sprintf("Could you provide more details about %s so we can confirm pricing?", product))
		case field == "items":
			questions = append(questions, "Could you specify which products and quantities you are interested in?")
		case field == "subject":
			questions = append(questions, "Could you provide a brief subject for this inquiry?")
		case field == "from":
			questions = append(questions, "Could you let us know your preferred contact email?")
		}
	}
	return questions
}
