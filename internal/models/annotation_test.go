package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validRecord() AnnotationRecord {
	return AnnotationRecord{
		PostID:          "abc123",
		PrimaryGroup:    "clinical",
		PrimaryTopic:    "symptoms_body_changes",
		SecondaryTopics: []string{"anxiety_fear_uncertainty"},
		Trimester:       "first",
		Sentiment:       "negative",
		Urgency:         1,
		Keywords:        []string{"nausea", "fatigue", "cramping", "spotting", "first trimester"},
	}
}

func TestAnnotationRecordValidate(t *testing.T) {
	rec := validRecord()
	require.NoError(t, rec.Validate())
}

func TestAnnotationRecordValidateRejections(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*AnnotationRecord)
	}{
		{"missing post_id", func(r *AnnotationRecord) { r.PostID = "" }},
		{"unknown group", func(r *AnnotationRecord) { r.PrimaryGroup = "made_up_group" }},
		{"topic from wrong group", func(r *AnnotationRecord) { r.PrimaryTopic = "nutrition_diet" }},
		{"unknown topic", func(r *AnnotationRecord) { r.PrimaryTopic = "astrology" }},
		{"too many secondary topics", func(r *AnnotationRecord) {
			r.SecondaryTopics = []string{"a", "b", "c", "d"}
		}},
		{"unknown trimester", func(r *AnnotationRecord) { r.Trimester = "fourth" }},
		{"unknown sentiment", func(r *AnnotationRecord) { r.Sentiment = "anxious" }},
		{"urgency too high", func(r *AnnotationRecord) { r.Urgency = 4 }},
		{"urgency negative", func(r *AnnotationRecord) { r.Urgency = -1 }},
		{"too few keywords", func(r *AnnotationRecord) { r.Keywords = []string{"one", "two"} }},
		{"too many keywords", func(r *AnnotationRecord) {
			r.Keywords = make([]string, 21)
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := validRecord()
			tc.mutate(&rec)
			assert.Error(t, rec.Validate())
		})
	}
}

func TestGroupTopicsCoverEveryGroup(t *testing.T) {
	require.Len(t, GroupTopics, 6)
	for group, topics := range GroupTopics {
		assert.NotEmpty(t, topics, "group %s has no topics", group)
	}
}
