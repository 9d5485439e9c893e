package models

import (
	"fmt"
	"time"
)

// Taxonomy vocabularies. The primary group fixes which topics are valid.
var GroupTopics = map[string][]string{
	"clinical": {
		"symptoms_body_changes", "medications_supplements", "test_results_labs",
		"pregnancy_complications", "labor_delivery",
	},
	"mental_health": {
		"anxiety_fear_uncertainty", "mood_depression", "body_image_identity",
		"relationship_stress", "peer_support_requests",
	},
	"lifestyle_parenting": {
		"nutrition_diet", "exercise_movement", "sleep_fatigue",
		"work_leave_career", "postpartum_care",
	},
	"access_navigation": {
		"choosing_provider", "hospital_clinic_experiences", "insurance_costs",
		"telehealth_virtual_care", "system_barriers_equity",
	},
	"community_info": {
		"ask_experiences_advice", "share_stories_outcomes",
		"product_device_discussions", "information_validation_misinformation",
	},
	"meta_context": {
		"question_seeking_info", "experience_sharing_narrative",
		"opinion_rant_vent", "announcement_milestone", "policy_advocacy_news",
	},
}

var Trimesters = []string{
	"preconception", "first", "second", "third", "pregnant",
	"postpartum", "miscarriage", "unclear",
}

var Sentiments = []string{"negative", "neutral", "positive"}

// AnnotationRecord is one LLM-derived enrichment of a CanonicalPost, written
// at most once per post_id.
type AnnotationRecord struct {
	PostID          string   `json:"post_id"`
	PrimaryGroup    string   `json:"primary_group"`
	PrimaryTopic    string   `json:"primary_topic"`
	SecondaryTopics []string `json:"secondary_topics"`
	Trimester       string   `json:"trimester"`
	Sentiment       string   `json:"sentiment"`
	Urgency         int      `json:"urgency_0_3"`
	Keywords        []string `json:"keywords"`
	SafetyFlags     []string `json:"safety_flags"`
	PostSummary     string   `json:"post_summary"`
	CareResponse    string   `json:"care_response"`

	ModelName    string    `json:"model_name"`
	ModelVersion string    `json:"model_version"`
	PromptHash   string    `json:"prompt_hash"`
	InputTokens  int       `json:"input_tokens"`
	OutputTokens int       `json:"output_tokens"`
	AnnotatedAt  time.Time `json:"annotated_at"`
}

// PostForAnnotation is one row from the staging table's anti-join selection.
type PostForAnnotation struct {
	PostID     string
	TextForLLM string
	TextRaw    string
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

// Validate enforces the closed vocabularies and cardinality bounds at the
// parse boundary, so schema violations drop the record instead of reaching
// the warehouse.
func (a *AnnotationRecord) Validate() error {
	if a.PostID == "" {
		return fmt.Errorf("missing post_id")
	}
	topics, ok := GroupTopics[a.PrimaryGroup]
	if !ok {
		return fmt.Errorf("unknown primary_group %q", a.PrimaryGroup)
	}
	if !contains(topics, a.PrimaryTopic) {
		return fmt.Errorf("primary_topic %q not valid for group %q", a.PrimaryTopic, a.PrimaryGroup)
	}
	if len(a.SecondaryTopics) > 3 {
		return fmt.Errorf("got %d secondary_topics, want at most 3", len(a.SecondaryTopics))
	}
	if !contains(Trimesters, a.Trimester) {
		return fmt.Errorf("unknown trimester %q", a.Trimester)
	}
	if !contains(Sentiments, a.Sentiment) {
		return fmt.Errorf("unknown sentiment %q", a.Sentiment)
	}
	if a.Urgency < 0 || a.Urgency > 3 {
		return fmt.Errorf("urgency_0_3 out of range: %d", a.Urgency)
	}
	if len(a.Keywords) < 5 || len(a.Keywords) > 20 {
		return fmt.Errorf("got %d keywords, want 5-20", len(a.Keywords))
	}
	return nil
}
