// Package prompt turns an aggregated business bundle and a call context
// into the voice agent's system prompt. Build is deterministic: identical
// inputs produce byte-identical output, and nothing here performs I/O.
package prompt

import (
	"fmt"
	"strings"

	"github.com/skyiq/backend/internal/models"
)

const (
	maxContextualKnowledge = 12
	maxSuggestedResponses  = 10
	maxHandoffTriggers     = 8

	maxTopicSummaries   = 5
	maxGeneralSummaries = 8
	maxResponseServices = 3
	maxTriggerAreas     = 3
	aboutSnippetLen     = 300
)

const (
	ExpertiseExpert      = "expert"
	ExpertiseSpecialized = "specialized"
	ExpertiseGeneral     = "general"
)

// Data sources are reported in this fixed order so prompt provenance reads
// the same way every time.
const (
	sourceProfile     = "Business Profile"
	sourceWebsite     = "Website Content"
	sourceDocuments   = "Business Documents"
	sourceLeads       = "Lead History"
	sourceCompetitive = "Competitive Intelligence"
)

// Build assembles the full prompt package from one aggregation snapshot.
func Build(data models.AggregatedBusinessData, callCtx models.PromptContext) models.GeneratedPrompt {
	return models.GeneratedPrompt{
		SystemPrompt:        buildSystemPrompt(data, callCtx),
		ContextualKnowledge: contextualKnowledge(data, callCtx),
		SuggestedResponses:  suggestedResponses(data, callCtx),
		HandoffTriggers:     handoffTriggers(data, callCtx),
		Metadata: models.PromptMetadata{
			DataSourcesUsed: dataSources(data),
			ConfidenceScore: ConfidenceScore(data),
			LastUpdated:     data.LastUpdated,
		},
	}
}

// ExpertiseLevel counts which depth signals hold: more than ten processed
// documents, more than five expertise areas, a leader market position, and
// an expert brand voice. Three or more is expert, two is specialized. The
// label only shapes the intro sentence.
func ExpertiseLevel(data models.AggregatedBusinessData) string {
	signals := 0
	if data.Documents.ProcessedDocuments > 10 {
		signals++
	}
	if len(data.Content.ExpertiseAreas) > 5 {
		signals++
	}
	if strings.Contains(strings.ToLower(data.Competitive.MarketPosition), "leader") {
		signals++
	}
	if strings.Contains(data.Content.BrandVoice, "Expert") {
		signals++
	}
	switch {
	case signals >= 3:
		return ExpertiseExpert
	case signals >= 2:
		return ExpertiseSpecialized
	default:
		return ExpertiseGeneral
	}
}

// ConfidenceScore is an additive heuristic out of 100 measuring how much
// source material backs the prompt. It is not a statistical confidence
// interval; the point values are the documented rule set.
func ConfidenceScore(data models.AggregatedBusinessData) int {
	score := 0
	if data.Profile.BusinessName != "" {
		score += 8
	}
	if data.Profile.Description != "" {
		score += 7
	}
	if data.Profile.Phone != "" || data.Profile.Email != "" {
		score += 5
	}
	if data.Profile.Address != "" {
		score += 5
	}
	if hasWebPresence(data) {
		score += 20
		if hasWebOfferings(data) {
			score += 15
		}
	}
	if data.Documents.ProcessedDocuments > 0 {
		score += 15
		if len(data.Documents.Chunks) > 10 {
			score += 10
		}
	}
	if len(data.Content.ExpertiseAreas) > 0 {
		score += 8
	}
	if data.Content.BrandVoice != "" {
		score += 7
	}
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	return score
}

func hasWebPresence(data models.AggregatedBusinessData) bool {
	for _, site := range data.WebData {
		if site.Title != "" || site.FullText != "" {
			return true
		}
	}
	return false
}

func hasWebOfferings(data models.AggregatedBusinessData) bool {
	for _, site := range data.WebData {
		if len(site.Business.Services) > 0 || len(site.Business.Products) > 0 {
			return true
		}
	}
	return false
}

func dataSources(data models.AggregatedBusinessData) []string {
	sources := []string{}
	if data.Profile.BusinessName != "" {
		sources = append(sources, sourceProfile)
	}
	if hasWebPresence(data) {
		sources = append(sources, sourceWebsite)
	}
	if data.Documents.ProcessedDocuments > 0 || len(data.Documents.Chunks) > 0 {
		sources = append(sources, sourceDocuments)
	}
	if data.Leads.TotalLeads > 0 {
		sources = append(sources, sourceLeads)
	}
	if len(data.Competitive.Keywords) > 0 {
		sources = append(sources, sourceCompetitive)
	}
	return sources
}

func contextualKnowledge(data models.AggregatedBusinessData, callCtx models.PromptContext) []string {
	knowledge := []string{}

	if topic := strings.TrimSpace(callCtx.SpecificTopic); topic != "" {
		lowered := strings.ToLower(topic)
		for _, chunk := range data.Documents.Chunks {
			if len(knowledge) >= maxTopicSummaries {
				break
			}
			if strings.Contains(strings.ToLower(chunk.Summary), lowered) {
				knowledge = append(knowledge, chunk.Summary)
			}
		}
	} else {
		for _, chunk := range data.Documents.Chunks {
			if len(knowledge) >= maxGeneralSummaries {
				break
			}
			knowledge = append(knowledge, chunk.Summary)
		}
	}

	for _, site := range data.WebData {
		if len(site.Business.AboutSections) > 0 {
			about := site.Business.AboutSections[0]
			if len(about) > aboutSnippetLen {
				about = about[:aboutSnippetLen]
			}
			knowledge = append(knowledge, about)
		}
		if len(site.Business.Testimonials) > 0 {
			knowledge = append(knowledge, site.Business.Testimonials[0])
		}
	}

	if len(knowledge) > maxContextualKnowledge {
		knowledge = knowledge[:maxContextualKnowledge]
	}
	return knowledge
}

func suggestedResponses(data models.AggregatedBusinessData, callCtx models.PromptContext) []string {
	name := data.Profile.BusinessName
	if name == "" {
		name = "our business"
	}

	responses := []string{
		fmt.Sprintf("Thank you for calling %s! How can I help you today?", name),
		fmt.Sprintf("Hi, you've reached %s. What can I do for you?", name),
	}

	services := distinctServices(data, maxResponseServices)
	for _, service := range services {
		responses = append(responses, fmt.Sprintf("I'd be happy to tell you more about our %s.", service))
	}

	if callCtx.CallType == "outbound" {
		responses = append(responses,
			fmt.Sprintf("I'm reaching out from %s to follow up on your interest.", name),
			"Is now a good time to talk for a couple of minutes?",
		)
	}
	if callCtx.TimeOfDay == "evening" {
		responses = append(responses, "Thanks for reaching us this evening. I can help now or set up a follow-up for tomorrow.")
	}

	// Escalation lines only make sense once there is something discovered to
	// escalate about; a bare profile keeps just the greetings.
	if len(services) > 0 || data.Documents.ProcessedDocuments > 0 {
		responses = append(responses,
			"Let me connect you with one of our specialists for the full details.",
			"I can have a team member call you back with the specifics.",
		)
	}

	if len(responses) > maxSuggestedResponses {
		responses = responses[:maxSuggestedResponses]
	}
	return responses
}

func handoffTriggers(data models.AggregatedBusinessData, callCtx models.PromptContext) []string {
	triggers := []string{
		"Caller requests custom pricing or a formal quote",
		"Caller needs detailed technical specifications",
		"Caller wants to schedule, reschedule, or cancel an appointment",
		"Caller raises a complaint that needs escalation",
	}

	areas := data.Content.ExpertiseAreas
	if len(areas) > maxTriggerAreas {
		areas = areas[:maxTriggerAreas]
	}
	for _, area := range areas {
		triggers = append(triggers, fmt.Sprintf("In-depth questions about %s beyond the provided knowledge", area))
	}

	if len(data.Operational.Hours) > 0 {
		triggers = append(triggers, "Requests for service outside the listed business hours")
	}
	if callCtx.Urgency == "high" {
		triggers = append(triggers, "Any urgent issue the caller says cannot wait")
	}

	if len(triggers) > maxHandoffTriggers {
		triggers = triggers[:maxHandoffTriggers]
	}
	return triggers
}

func distinctServices(data models.AggregatedBusinessData, max int) []string {
	out := []string{}
	seen := map[string]struct{}{}
	for _, site := range data.WebData {
		for _, service := range site.Business.Services {
			if len(out) >= max {
				return out
			}
			key := strings.ToLower(service)
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			out = append(out, service)
		}
	}
	return out
}
