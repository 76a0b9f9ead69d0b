// internal/discovery/contacts/scorer.go
package contacts

import (
	"fmt"
	"regexp"
	"strings"

	"contact-discovery/internal/common/config"
	"contact-discovery/internal/common/logger"
	"contact-discovery/internal/common/validation"
	"contact-discovery/internal/models"
)

// ==========================
// 1. Vocabulary & Patterns
// ==========================

var disposableDomains = map[string]bool{
	"tempmail.com":       true,
	"mailinator.com":     true,
	"guerrillamail.com":  true,
	"10minutemail.com":   true,
	"yopmail.com":        true,
	"trashmail.com":      true,
	"throwawaymail.com":  true,
	"getnada.com":        true,
	"sharklasers.com":    true,
	"dispostable.com":    true,
	"fakeinbox.com":      true,
	"spamgourmet.com":    true,
	"temp-mail.org":      true,
	"maildrop.cc":        true,
	"mintemail.com":      true,
	"mytemp.email":       true,
	"burnermail.io":      true,
	"emailondeck.com":    true,
	"tempinbox.com":      true,
	"mailcatch.com":      true,
}

var credibleDomains = map[string]bool{
	"nytimes.com":        true,
	"washingtonpost.com": true,
	"wsj.com":            true,
	"reuters.com":        true,
	"apnews.com":         true,
	"bbc.co.uk":          true,
	"bbc.com":            true,
	"theguardian.com":    true,
	"bloomberg.com":      true,
	"ft.com":             true,
	"economist.com":      true,
	"cnn.com":            true,
	"npr.org":            true,
	"politico.com":       true,
	"axios.com":          true,
	"wired.com":          true,
	"techcrunch.com":     true,
	"theverge.com":       true,
	"spiegel.de":         true,
	"lemonde.fr":         true,
}

var genericMailboxes = map[string]bool{
	"info":       true,
	"contact":    true,
	"admin":      true,
	"office":     true,
	"hello":      true,
	"mail":       true,
	"support":    true,
	"webmaster":  true,
	"newsdesk":   true,
	"editorial":  true,
	"press":      true,
	"newsroom":   true,
	"tips":       true,
	"noreply":    true,
	"no-reply":   true,
}

var professionalTitles = []string{
	"editor", "reporter", "journalist", "correspondent", "columnist",
	"writer", "contributor", "producer", "anchor", "critic", "blogger",
	"editor-in-chief", "managing editor", "bureau chief", "news director",
	"staff writer", "freelance",
}

var titleSuffixes = []string{"jr.", "jr", "sr.", "sr", "dr.", "dr", "mr.", "mrs.", "ms.", "prof."}

var (
	digitsOnlyPattern   = regexp.MustCompile(`^\d+$`)
	containsDigits      = regexp.MustCompile(`\d`)
	professionalEmail   = regexp.MustCompile(`^[a-z]+[._][a-z]+@`)
	suspiciousSubstring = regexp.MustCompile(`(?i)(test|fake|sample|dummy|example|asdf|qwerty)`)
)

// suspiciousConfidenceCeiling caps confidence whenever suspicious-name
// patterns are detected, regardless of other factors.
const suspiciousConfidenceCeiling = 0.45

// ==========================
// 2. ConfidenceScorer
// ==========================

// ConfidenceScorer computes three independent [0,1] scores per extracted
// contact, each with deterministic reasoning and recommendations derived
// from which sub-checks pass.
type ConfidenceScorer struct {
	weights config.ContactWeights
	logger  logger.Logger
}

func NewConfidenceScorer(weights config.ContactWeights, log logger.Logger) *ConfidenceScorer {
	return &ConfidenceScorer{
		weights: weights,
		logger:  log.WithFields(map[string]interface{}{"component": "confidence-scorer"}),
	}
}

// Weights returns the effective confidence factor weights.
func (s *ConfidenceScorer) Weights() config.ContactWeights {
	return s.weights
}

// ScoreContact scores one contact along the confidence, quality and
// relevance axes. Source content and quality signals are optional; absent
// inputs fall back to neutral baselines.
func (s *ConfidenceScorer) ScoreContact(
	contact models.ExtractedContact,
	source *models.SourceContent,
	criteria models.SearchCriteria,
	signals models.QualitySignals,
) models.ScoringResult {
	result := models.ScoringResult{
		Factors: map[string]float64{},
	}

	result.ConfidenceScore = s.confidenceScore(contact, source, &result)
	result.QualityScore = s.qualityScore(contact, signals, &result)
	result.RelevanceScore = s.relevanceScore(contact, source, criteria, &result)

	s.appendSummary(&result)
	return result
}

// ==========================
// 3. Confidence Axis
// ==========================

func (s *ConfidenceScorer) confidenceScore(contact models.ExtractedContact, source *models.SourceContent, result *models.ScoringResult) float64 {
	type factor struct {
		name   string
		weight float64
		score  float64
		has    bool
	}

	factors := []factor{
		{"nameConfidence", s.weights.Name, s.nameConfidence(contact.Name, result), true},
		{"emailConfidence", s.weights.Email, s.emailConfidence(contact.Email, source, result), contact.Email != ""},
		{"titleConfidence", s.weights.Title, s.titleConfidence(contact.Title, result), contact.Title != ""},
		{"bioConfidence", s.weights.Bio, s.bioConfidence(contact.Bio, result), contact.Bio != ""},
		{"socialConfidence", s.weights.Social, s.socialConfidence(contact.SocialProfiles, result), len(contact.SocialProfiles) > 0},
	}

	var weighted, totalWeight float64
	for _, f := range factors {
		result.Factors[f.name] = f.score
		if f.has {
			weighted += f.score * f.weight
			totalWeight += f.weight
		}
	}

	score := 0.0
	if totalWeight > 0 {
		score = weighted / totalWeight
	}

	if s.isSuspiciousName(contact.Name) {
		if score > suspiciousConfidenceCeiling {
			score = suspiciousConfidenceCeiling
		}
		result.Reasoning = append(result.Reasoning, "Suspicious name pattern detected, confidence capped")
		result.Recommendations = append(result.Recommendations, "Manually verify this contact before import")
	}

	return clamp01(score)
}

func (s *ConfidenceScorer) nameConfidence(name string, result *models.ScoringResult) float64 {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		result.Reasoning = append(result.Reasoning, "Name is missing")
		result.Recommendations = append(result.Recommendations, "Re-extract the contact name from the source page")
		return 0
	}

	score := 1.0
	tokens := strings.Fields(trimmed)

	if digitsOnlyPattern.MatchString(trimmed) {
		result.Reasoning = append(result.Reasoning, "Name consists only of digits")
		return 0
	}

	if len(tokens) == 1 && len(trimmed) < 4 {
		score -= 0.5
		result.Reasoning = append(result.Reasoning, "Name is a single short token")
	}

	if trimmed == strings.ToUpper(trimmed) && len(trimmed) > 3 {
		score -= 0.3
		result.Reasoning = append(result.Reasoning, "Name is written in all caps")
		result.Recommendations = append(result.Recommendations, "Normalize name casing before import")
	}

	if containsDigits.MatchString(trimmed) {
		score -= 0.4
		result.Reasoning = append(result.Reasoning, "Name contains digits")
	}

	for _, suffix := range titleSuffixes {
		for _, token := range tokens {
			if strings.EqualFold(token, suffix) {
				score -= 0.2
				result.Reasoning = append(result.Reasoning, "Name field contains an embedded title or suffix")
				result.Recommendations = append(result.Recommendations, "Strip titles and suffixes from the name field")
				break
			}
		}
	}

	if score == 1.0 && len(tokens) >= 2 {
		result.Reasoning = append(result.Reasoning, "Name looks like a plausible full name")
	}

	return clamp01(score)
}

// hasRepeatedRun reports whether s contains the same non-newline character
// repeated four or more times in a row. Go's regexp (RE2) cannot express the
// backreference pattern `(.)\1{3,}`, so the check is done directly.
func hasRepeatedRun(s string) bool {
	var prev rune
	run := 0
	for _, r := range s {
		if r == prev && r != '\n' {
			run++
			if run >= 4 {
				return true
			}
		} else {
			prev = r
			run = 1
		}
	}
	return false
}

func (s *ConfidenceScorer) isSuspiciousName(name string) bool {
	lowered := strings.ToLower(strings.TrimSpace(name))
	if lowered == "" {
		return false
	}
	return digitsOnlyPattern.MatchString(lowered) ||
		hasRepeatedRun(lowered) ||
		suspiciousSubstring.MatchString(lowered)
}

func (s *ConfidenceScorer) emailConfidence(email string, source *models.SourceContent, result *models.ScoringResult) float64 {
	lowered := strings.ToLower(strings.TrimSpace(email))
	if lowered == "" {
		result.Recommendations = append(result.Recommendations, "Locate an email address for this contact")
		return 0
	}

	if !validation.ValidateEmail(lowered) {
		result.Reasoning = append(result.Reasoning, "Email address is malformed")
		return 0.1
	}

	parts := strings.SplitN(lowered, "@", 2)
	localPart, domain := parts[0], parts[1]

	score := 0.5

	if disposableDomains[domain] {
		score = 0.1
		result.Reasoning = append(result.Reasoning, "Email uses a disposable domain")
		result.Recommendations = append(result.Recommendations, "Discard disposable email and search for a professional address")
		return score
	}

	if credibleDomains[domain] {
		score += 0.3
		result.Reasoning = append(result.Reasoning, "Email domain belongs to a credible outlet")
	} else if source != nil && source.Metadata.Domain != "" &&
		strings.HasSuffix(domain, strings.ToLower(source.Metadata.Domain)) {
		score += 0.25
		result.Reasoning = append(result.Reasoning, "Email domain matches the source outlet")
	}

	if genericMailboxes[localPart] {
		score -= 0.25
		result.Reasoning = append(result.Reasoning, "Email is a generic shared mailbox")
		result.Recommendations = append(result.Recommendations, "Prefer a personal address over a shared mailbox")
	} else if professionalEmail.MatchString(lowered) {
		score += 0.2
		result.Reasoning = append(result.Reasoning, "Email follows a professional first.last pattern")
	}

	return clamp01(score)
}

func (s *ConfidenceScorer) titleConfidence(title string, result *models.ScoringResult) float64 {
	lowered := strings.ToLower(strings.TrimSpace(title))
	if lowered == "" {
		return 0
	}

	for _, vocab := range professionalTitles {
		if strings.Contains(lowered, vocab) {
			result.Reasoning = append(result.Reasoning, "Title matches professional media vocabulary")
			return 1.0
		}
	}

	result.Reasoning = append(result.Reasoning, "Title does not match known media roles")
	result.Recommendations = append(result.Recommendations, "Verify the contact's role at the outlet")
	return 0.4
}

func (s *ConfidenceScorer) bioConfidence(bio string, result *models.ScoringResult) float64 {
	trimmed := strings.TrimSpace(bio)
	if trimmed == "" {
		return 0
	}

	words := len(strings.Fields(trimmed))
	switch {
	case words < 5:
		result.Reasoning = append(result.Reasoning, "Bio is too short to be informative")
		return 0.3
	case words > 500:
		result.Reasoning = append(result.Reasoning, "Bio is unusually long, likely page noise")
		return 0.4
	default:
		result.Reasoning = append(result.Reasoning, "Bio has plausible length")
		return 0.8
	}
}

func (s *ConfidenceScorer) socialConfidence(profiles []models.SocialProfile, result *models.ScoringResult) float64 {
	if len(profiles) == 0 {
		return 0
	}

	score := 0.5
	verified := 0
	valid := 0
	for _, p := range profiles {
		if validation.ValidateURL(p.URL) {
			valid++
		}
		if p.Verified {
			verified++
		}
	}

	if valid == len(profiles) {
		score += 0.2
	}
	if verified > 0 {
		score += 0.3
		result.Reasoning = append(result.Reasoning, "Contact has verified social profiles")
	} else {
		result.Reasoning = append(result.Reasoning, "Social profiles present but unverified")
	}

	return clamp01(score)
}

// ==========================
// 4. Quality Axis
// ==========================

func (s *ConfidenceScorer) qualityScore(contact models.ExtractedContact, signals models.QualitySignals, result *models.ScoringResult) float64 {
	credibility := clamp01(signals.SourceCredibility)
	freshness := clamp01(signals.ContentFreshness)
	completeness := s.completeness(contact)

	consistency := 1.0
	if signals.InformationConsistency != nil {
		consistency = clamp01(*signals.InformationConsistency)
	}

	result.Factors["sourceCredibility"] = credibility
	result.Factors["contentFreshness"] = freshness
	result.Factors["contactCompleteness"] = completeness
	result.Factors["informationConsistency"] = consistency

	if completeness < 0.5 {
		result.Recommendations = append(result.Recommendations, "Enrich missing contact fields before ranking")
	}

	score := credibility*0.3 + freshness*0.2 + completeness*0.3 + consistency*0.2
	return clamp01(score)
}

func (s *ConfidenceScorer) completeness(contact models.ExtractedContact) float64 {
	filled := 0
	if strings.TrimSpace(contact.Title) != "" {
		filled++
	}
	if strings.TrimSpace(contact.Bio) != "" {
		filled++
	}
	if strings.TrimSpace(contact.Email) != "" {
		filled++
	}
	if len(contact.SocialProfiles) > 0 {
		filled++
	}
	return float64(filled) / 4.0
}

// ==========================
// 5. Relevance Axis
// ==========================

const relevanceBaseline = 0.4

func (s *ConfidenceScorer) relevanceScore(contact models.ExtractedContact, source *models.SourceContent, criteria models.SearchCriteria, result *models.ScoringResult) float64 {
	score := relevanceBaseline

	if source != nil {
		if source.Metadata.Author != "" && namesMatch(source.Metadata.Author, contact.Name) {
			score += 0.2
			result.Reasoning = append(result.Reasoning, "Contact name matches the source byline")
		}

		if source.Metadata.Domain != "" {
			for _, outlet := range criteria.Outlets {
				if strings.Contains(strings.ToLower(source.Metadata.Domain), strings.ToLower(outlet)) {
					score += 0.15
					result.Reasoning = append(result.Reasoning, "Source domain matches a requested outlet")
					break
				}
			}
		}

		if source.Language != "" {
			for _, lang := range criteria.Languages {
				if strings.EqualFold(source.Language, lang) {
					score += 0.1
					result.Reasoning = append(result.Reasoning, "Content language matches a requested language")
					break
				}
			}
		}
	}

	loweredBio := strings.ToLower(contact.Bio)
	keywords := append(append([]string{}, criteria.Beats...), criteria.Topics...)
	for _, keyword := range keywords {
		if keyword != "" && strings.Contains(loweredBio, strings.ToLower(keyword)) {
			score += 0.15
			result.Reasoning = append(result.Reasoning, "Bio mentions a requested beat or topic")
			break
		}
	}

	result.Factors["relevanceBaseline"] = relevanceBaseline
	return clamp01(score)
}

func namesMatch(a, b string) bool {
	normalize := func(s string) string {
		return strings.Join(strings.Fields(strings.ToLower(s)), " ")
	}
	na, nb := normalize(a), normalize(b)
	if na == "" || nb == "" {
		return false
	}
	return na == nb || strings.Contains(na, nb) || strings.Contains(nb, na)
}

// ==========================
// 6. Summary
// ==========================

func (s *ConfidenceScorer) appendSummary(result *models.ScoringResult) {
	switch {
	case result.ConfidenceScore >= 0.8:
		result.Reasoning = append(result.Reasoning, fmt.Sprintf("High confidence contact (%.2f)", result.ConfidenceScore))
		result.Recommendations = append(result.Recommendations, "Safe to import automatically")
	case result.ConfidenceScore >= 0.5:
		result.Reasoning = append(result.Reasoning, fmt.Sprintf("Moderate confidence contact (%.2f)", result.ConfidenceScore))
		result.Recommendations = append(result.Recommendations, "Review before import")
	default:
		result.Reasoning = append(result.Reasoning, fmt.Sprintf("Low confidence contact (%.2f)", result.ConfidenceScore))
		result.Recommendations = append(result.Recommendations, "Do not import without manual verification")
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
