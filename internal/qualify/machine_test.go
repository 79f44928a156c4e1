package qualify

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turfline/leadchat/internal/models"
)

func sessionAt(stage models.Stage) *models.Session {
	return &models.Session{SessionID: "test-session", Stage: stage}
}

func text(v string) Input   { return Input{Kind: InputText, Value: v} }
func choice(v string) Input { return Input{Kind: InputChoice, Value: v} }

func TestFullQualificationWalk(t *testing.T) {
	s := sessionAt(models.StageIdle)

	res := Advance(s, choice("get-quote"))
	require.False(t, res.Rejected)
	assert.Equal(t, models.StagePropertyType, s.Stage)

	res = Advance(s, choice("residential"))
	require.False(t, res.Rejected)
	assert.Equal(t, models.StageLocation, s.Stage)
	assert.Equal(t, "residential", s.Customer.PropertyType)

	res = Advance(s, text("123 Oak St, Madison"))
	require.False(t, res.Rejected)
	assert.Equal(t, models.StageServiceDetails, s.Stage)
	assert.Equal(t, "123 Oak St, Madison", s.Customer.Address)

	res = Advance(s, text("weekly mowing and fall cleanup"))
	require.False(t, res.Rejected)
	assert.Equal(t, models.StageTimeline, s.Stage)
	assert.Equal(t, "weekly mowing and fall cleanup", s.Customer.ServiceInterest)

	res = Advance(s, choice("asap"))
	require.False(t, res.Rejected)
	assert.Equal(t, models.StageContactMethod, s.Stage)
	assert.Equal(t, "asap", s.Customer.Timeline)

	res = Advance(s, choice("email"))
	require.False(t, res.Rejected)
	assert.Equal(t, models.StageContactInfo, s.Stage)
	assert.Equal(t, "email", s.Customer.PreferredContact)

	res = Advance(s, text("John Smith john@example.com"))
	require.False(t, res.Rejected)
	assert.True(t, res.Completed)
	assert.Equal(t, models.StageComplete, s.Stage)

	// transcript alternates and stays in insertion order
	require.NotEmpty(t, s.Transcript)
	assert.Equal(t, models.RoleUser, s.Transcript[0].Role)
	assert.Equal(t, "Get a free quote", s.Transcript[0].Text)
}

func TestForcedChoiceStepsNeverLoop(t *testing.T) {
	tests := []struct {
		stage models.Stage
		bad   Input
	}{
		{models.StagePropertyType, choice("mansion")},
		{models.StagePropertyType, text("residential")},
		{models.StageTimeline, choice("next-year")},
		{models.StageContactMethod, choice("fax")},
	}

	for _, tt := range tests {
		s := sessionAt(tt.stage)
		res := Advance(s, tt.bad)

		assert.True(t, res.Rejected)
		assert.Equal(t, tt.stage, s.Stage, "rejected input must not transition")
		assert.Empty(t, s.Transcript, "rejected input must not touch the transcript")
	}
}

func TestFreeTextStepsAcceptAnyNonEmpty(t *testing.T) {
	s := sessionAt(models.StageLocation)

	res := Advance(s, text("   "))
	assert.True(t, res.Rejected)
	assert.Equal(t, models.StageLocation, s.Stage)

	res = Advance(s, text("somewhere on the west side"))
	assert.False(t, res.Rejected)
	assert.Equal(t, models.StageServiceDetails, s.Stage)
}

func TestContactInfoPhoneThenName(t *testing.T) {
	s := sessionAt(models.StageContactInfo)

	res := Advance(s, text("608-555-1234"))
	require.False(t, res.Rejected)
	assert.Equal(t, models.StageContactInfo, s.Stage, "no name yet: self-loop")
	assert.Equal(t, replyNeedNameKnown, res.Replies[0], "contact already known variant")

	res = Advance(s, text("John Smith"))
	require.False(t, res.Rejected)
	assert.True(t, res.Completed)
	assert.Equal(t, models.StageComplete, s.Stage)
	assert.Equal(t, "608-555-1234", s.Customer.Phone)
	assert.Equal(t, "John Smith", s.Customer.Name)
}

func TestContactInfoNameThenEmail(t *testing.T) {
	s := sessionAt(models.StageContactInfo)

	res := Advance(s, text("John Smith"))
	require.False(t, res.Rejected)
	assert.Equal(t, models.StageContactInfo, s.Stage, "no reach yet: self-loop")
	assert.Contains(t, res.Replies[0], "John Smith", "re-prompt addresses the user by name")

	res = Advance(s, text("john@example.com"))
	require.False(t, res.Rejected)
	assert.Equal(t, models.StageComplete, s.Stage)
	assert.Equal(t, "john@example.com", s.Customer.Email)
}

func TestContactInfoRepromptBranchesDiffer(t *testing.T) {
	// nothing known yet: ask from scratch
	fresh := sessionAt(models.StageContactInfo)
	resFresh := Advance(fresh, text("x")) // too short for a name, no email/phone
	require.False(t, resFresh.Rejected)
	assert.Equal(t, replyNeedNameFresh, resFresh.Replies[0])

	// phone known: acknowledge it
	known := sessionAt(models.StageContactInfo)
	resKnown := Advance(known, text("608-555-1234"))
	require.False(t, resKnown.Rejected)
	assert.Equal(t, replyNeedNameKnown, resKnown.Replies[0])

	assert.NotEqual(t, resFresh.Replies[0], resKnown.Replies[0])
}

func TestContactInfoExitRequiresNameAndReach(t *testing.T) {
	// random orderings of partial submissions: the stage is only left once
	// a usable name and at least one of email/phone are both captured
	inputs := [][]string{
		{"608-555-1234", "John Smith"},
		{"John Smith", "john@example.com"},
		{"x", "!!", "John Smith 608-555-1234"},
		{"john@example.com", "608-555-1234", "Jane"},
		{"Jane", "Doe", "jane@example.com"},
	}

	for _, seq := range inputs {
		s := sessionAt(models.StageContactInfo)
		for _, in := range seq {
			Advance(s, text(in))
			if s.Stage == models.StageComplete {
				assert.GreaterOrEqual(t, len(s.Customer.Name), 2)
				assert.True(t, s.Customer.Email != "" || s.Customer.Phone != "")
			}
		}
	}
}

func TestContactInfoCrossFieldMergeSurvives(t *testing.T) {
	s := sessionAt(models.StageContactInfo)

	Advance(s, text("608-555-1234"))
	Advance(s, text("john@example.com"))

	// email arrived after phone: both must survive
	assert.Equal(t, "608-555-1234", s.Customer.Phone)
	assert.Equal(t, "john@example.com", s.Customer.Email)
}

func TestFeedbackFlow(t *testing.T) {
	t.Run("rating then comment", func(t *testing.T) {
		s := sessionAt(models.StageFeedback)

		res := Advance(s, choice("4"))
		require.False(t, res.Rejected)
		assert.Equal(t, models.StageFeedback, s.Stage, "comment solicited before leaving")
		assert.Nil(t, res.Feedback)

		res = Advance(s, text("great chat"))
		require.NotNil(t, res.Feedback)
		assert.Equal(t, 4, res.Feedback.Rating)
		assert.Equal(t, "great chat", res.Feedback.Text)
		assert.Equal(t, models.StageFeedbackSubmitted, s.Stage)
	})

	t.Run("rating then skip", func(t *testing.T) {
		s := sessionAt(models.StageFeedback)

		Advance(s, choice("5"))
		res := Advance(s, Input{Kind: InputSkip})
		require.NotNil(t, res.Feedback)
		assert.Equal(t, 5, res.Feedback.Rating)
		assert.Empty(t, res.Feedback.Text)
		assert.Equal(t, models.StageFeedbackSubmitted, s.Stage)
	})

	t.Run("skip without rating submits nothing", func(t *testing.T) {
		s := sessionAt(models.StageFeedback)

		res := Advance(s, Input{Kind: InputSkip})
		assert.Nil(t, res.Feedback)
		assert.Equal(t, models.StageFeedbackSubmitted, s.Stage)
	})

	t.Run("out of range rating rejected", func(t *testing.T) {
		s := sessionAt(models.StageFeedback)

		res := Advance(s, choice("6"))
		assert.True(t, res.Rejected)
		assert.Equal(t, models.StageFeedback, s.Stage)
	})

	t.Run("comment before rating rejected", func(t *testing.T) {
		s := sessionAt(models.StageFeedback)

		res := Advance(s, text("no rating yet"))
		assert.True(t, res.Rejected)
		assert.Equal(t, models.StageFeedback, s.Stage)
	})
}

func TestFreeForm(t *testing.T) {
	assert.True(t, FreeForm(models.StageIdle))
	assert.True(t, FreeForm(models.StageComplete))
	assert.True(t, FreeForm(models.StageFeedbackSubmitted))
	assert.False(t, FreeForm(models.StageContactInfo))
	assert.False(t, FreeForm(models.StagePropertyType))
}
