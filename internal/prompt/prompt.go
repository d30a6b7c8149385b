// Package prompt builds the generative-model instruction and extracts the
// synthesizable segment from its reply.
//
// The model is asked to answer in Luxembourgish (falling back to German)
// and to lay the reply out with four literal markers. The reply format is
// not enforceable on the model side, so extraction degrades through three
// tiers: well-formed marked output, fallback-language output, and unmarked
// free text. Extraction never fails; at worst it returns the whole reply.
package prompt

import (
	"fmt"
	"strings"
)

// The four reply markers, in priority order. An answer marker may be
// followed by at most one follow-up marker, and the answer always precedes
// the follow-up in a well-formed reply.
const (
	MarkerAnswerLU   = "LU :"
	MarkerAnswerDE   = "DE :"
	MarkerFollowUpLU = "Question suivante LU :"
	MarkerFollowUpDE = "Question suivante DE :"
)

// Build returns the deterministic instruction for one user utterance. The
// template addresses a teenage audience, demands concision, sets the
// Luxembourgish-then-German language priority and pins the marker layout.
func Build(userText string) string {
	return fmt.Sprintf(
		"La question est : '%s'. "+
			"Réponds à cette question en t'adressant à un jeune adolescent, sois concis et utile. "+
			"Réponds en luxembourgeois. Si tu ne peux pas répondre en luxembourgeois, réponds en allemand. "+
			"Après ta réponse, pose une question courte et pertinente pour relancer la conversation. "+
			"Cette question de relance doit être en luxembourgeois. Si pas possible, en allemand. "+
			"Présente la réponse et la question de relance de la manière suivante : "+
			"%s [Votre réponse en luxembourgeois] "+
			"%s [Question en luxembourgeois] "+
			"Si tu dois utiliser l'allemand, utilise le format '%s ...' au lieu de '%s ...' "+
			"pour la réponse et '%s ...' pour la relance.",
		userText,
		MarkerAnswerLU, MarkerFollowUpLU,
		MarkerAnswerDE, MarkerAnswerLU, MarkerFollowUpDE,
	)
}

// ExtractSpeechSegment returns the part of a raw model reply that should be
// vocalized, trimmed of surrounding whitespace. It never fails; an empty
// string is a valid result.
//
// When an answer marker is present, the segment runs from just after it to
// the earliest follow-up marker found at or after that point, searching
// forward only. When both follow-up markers appear, the earliest one wins:
// a well-formed reply carries only one, and the index position is the only
// rule that needs no knowledge of which marker is the "correct" one.
// Without an answer marker, everything before the first follow-up marker is
// used, and without any marker the whole reply is.
func ExtractSpeechSegment(raw string) string {
	if idx := strings.Index(raw, MarkerAnswerLU); idx != -1 {
		rest := raw[idx+len(MarkerAnswerLU):]
		endLU := strings.Index(rest, MarkerFollowUpLU)
		endDE := strings.Index(rest, MarkerFollowUpDE)

		switch {
		case endLU != -1 && (endDE == -1 || endLU < endDE):
			return strings.TrimSpace(rest[:endLU])
		case endDE != -1:
			return strings.TrimSpace(rest[:endDE])
		default:
			return strings.TrimSpace(rest)
		}
	}

	if idx := strings.Index(raw, MarkerFollowUpLU); idx != -1 {
		return strings.TrimSpace(raw[:idx])
	}
	if idx := strings.Index(raw, MarkerFollowUpDE); idx != -1 {
		return strings.TrimSpace(raw[:idx])
	}
	return strings.TrimSpace(raw)
}
