package prompt

import (
	"fmt"
	"strings"

	"github.com/skyiq/backend/internal/models"
)

// buildSystemPrompt concatenates the prompt sections in fixed order:
// identity intro, business identity, operational context, expertise,
// communication style, call handling, and the closing guidelines.
func buildSystemPrompt(data models.AggregatedBusinessData, callCtx models.PromptContext) string {
	var b strings.Builder
	writeSection(&b, introSection(data))
	writeSection(&b, identitySection(data))
	writeSection(&b, operationalSection(data, callCtx))
	writeSection(&b, expertiseSection(data))
	writeSection(&b, styleSection(data, callCtx))
	writeSection(&b, handlingSection(data, callCtx))
	writeSection(&b, criticalGuidelines)
	return strings.TrimRight(b.String(), "\n")
}

func writeSection(b *strings.Builder, section string) {
	if section == "" {
		return
	}
	b.WriteString(section)
	b.WriteString("\n\n")
}

func introSection(data models.AggregatedBusinessData) string {
	name := data.Profile.BusinessName
	if name == "" {
		name = "this business"
	}
	switch ExpertiseLevel(data) {
	case ExpertiseExpert:
		return fmt.Sprintf("You are the expert voice assistant for %s, with deep knowledge of the business and its field.", name)
	case ExpertiseSpecialized:
		return fmt.Sprintf("You are the specialized voice assistant for %s, well versed in what the business offers.", name)
	default:
		return fmt.Sprintf("You are the friendly voice assistant for %s.", name)
	}
}

func identitySection(data models.AggregatedBusinessData) string {
	lines := []string{"BUSINESS IDENTITY:"}
	if data.Profile.BusinessName != "" {
		lines = append(lines, "- Business name: "+data.Profile.BusinessName)
	}
	if data.Profile.Description != "" {
		lines = append(lines, "- About: "+data.Profile.Description)
	}
	for _, site := range data.WebData {
		if site.Description != "" && !strings.HasPrefix(site.Description, "Failed to scrape") {
			lines = append(lines, "- Online presence: "+site.Description)
			break
		}
	}
	if len(lines) == 1 {
		return ""
	}
	return strings.Join(lines, "\n")
}

func operationalSection(data models.AggregatedBusinessData, callCtx models.PromptContext) string {
	lines := []string{"OPERATIONAL CONTEXT:"}
	if len(data.Operational.Phones) > 0 {
		lines = append(lines, "- Phone: "+strings.Join(data.Operational.Phones, ", "))
	}
	if len(data.Operational.Emails) > 0 {
		lines = append(lines, "- Email: "+strings.Join(data.Operational.Emails, ", "))
	}
	if data.Operational.Address != "" {
		lines = append(lines, "- Address: "+data.Operational.Address)
	}
	if len(data.Operational.Hours) > 0 {
		lines = append(lines, "- Business hours: "+strings.Join(data.Operational.Hours, "; "))
	}
	switch callCtx.TimeOfDay {
	case "morning":
		lines = append(lines, "- It is morning; greet accordingly.")
	case "afternoon":
		lines = append(lines, "- It is afternoon; greet accordingly.")
	case "evening":
		lines = append(lines, "- It is evening; if the office is closed, offer to arrange next-day follow-up.")
	}
	if len(lines) == 1 {
		return ""
	}
	return strings.Join(lines, "\n")
}

func expertiseSection(data models.AggregatedBusinessData) string {
	lines := []string{"EXPERTISE AND KNOWLEDGE:"}

	if services := distinctServices(data, 10); len(services) > 0 {
		lines = append(lines, "- Services: "+strings.Join(services, ", "))
	}
	if products := distinctProducts(data, 10); len(products) > 0 {
		lines = append(lines, "- Products: "+strings.Join(products, ", "))
	}
	if len(data.Documents.TopKeywords) > 0 {
		lines = append(lines, "- Knowledge topics: "+strings.Join(data.Documents.TopKeywords, ", "))
	}
	if data.Competitive.MarketPosition != "" {
		lines = append(lines, "- Market position: "+data.Competitive.MarketPosition)
	}
	for _, propValue := range data.Competitive.UniqueValueProps {
		lines = append(lines, "- What sets the business apart: "+propValue)
		break
	}
	if len(lines) == 1 {
		return ""
	}
	return strings.Join(lines, "\n")
}

func styleSection(data models.AggregatedBusinessData, callCtx models.PromptContext) string {
	lines := []string{"COMMUNICATION STYLE:"}
	if data.Content.BrandVoice != "" {
		lines = append(lines, "- Tone: "+data.Content.BrandVoice)
	} else {
		lines = append(lines, "- Tone: helpful and natural")
	}
	switch callCtx.CallType {
	case "outbound":
		lines = append(lines, "- This is an outbound call: be respectful of the person's time and state the reason for calling early.")
	case "inbound":
		lines = append(lines, "- This is an inbound call: let the caller lead and answer what they actually asked.")
	default:
		lines = append(lines, "- Adapt to the caller's pace and keep answers short.")
	}
	switch callCtx.Urgency {
	case "high":
		lines = append(lines, "- Priority: the caller's matter is urgent; resolve or escalate it before anything else.")
	case "medium":
		lines = append(lines, "- Priority: address the caller's matter promptly.")
	}
	return strings.Join(lines, "\n")
}

func handlingSection(data models.AggregatedBusinessData, callCtx models.PromptContext) string {
	lines := []string{"CALL HANDLING:"}
	if len(data.Content.PainPoints) > 0 {
		lines = append(lines, "- Customers commonly struggle with: "+strings.Join(capList(data.Content.PainPoints, 3), "; "))
	}
	if callCtx.CallType == "outbound" {
		lines = append(lines, "- Qualify the lead: confirm their interest, timeline, and the best way to follow up.")
	}
	if callCtx.CustomerIntent != "" {
		lines = append(lines, "- The caller's likely intent: "+callCtx.CustomerIntent)
	}
	if callCtx.SpecificTopic != "" {
		lines = append(lines, "- Keep the conversation focused on: "+callCtx.SpecificTopic)
	}
	if len(callCtx.PreviousInteractions) > 0 {
		lines = append(lines, "- Prior interactions: "+strings.Join(capList(callCtx.PreviousInteractions, 3), "; "))
	}
	if len(lines) == 1 {
		return ""
	}
	return strings.Join(lines, "\n")
}

// criticalGuidelines closes every prompt regardless of how much data backs
// it.
const criticalGuidelines = `CRITICAL GUIDELINES:
- Always speak as part of the business, never as a third party or an AI service.
- Never mention "documentation", "files", or internal data sources; present knowledge as your own.
- If you are uncertain or the caller needs more than you can provide, offer to connect them with a team member.
- Never invent prices, availability, or commitments the business has not stated.`

func distinctProducts(data models.AggregatedBusinessData, max int) []string {
	out := []string{}
	seen := map[string]struct{}{}
	for _, site := range data.WebData {
		for _, product := range site.Business.Products {
			if len(out) >= max {
				return out
			}
			key := strings.ToLower(product)
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			out = append(out, product)
		}
	}
	return out
}

func capList(list []string, max int) []string {
	if len(list) > max {
		return list[:max]
	}
	return list
}
