package intake

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clubhub/internal/application/models"
	campaignmodels "clubhub/internal/campaign/models"
	dErrors "clubhub/pkg/domain-errors"
)

var questions = []campaignmodels.ApplicationQuestion{
	{ID: "q_motivation", Prompt: "Why do you want to join?", Type: campaignmodels.QuestionTypeTextarea, Required: true, MaxLength: 500},
	{ID: "q_year", Prompt: "Year of study", Type: campaignmodels.QuestionTypeSelect, Required: true, Options: []string{"1", "2", "3", "4"}},
	{ID: "q_interests", Prompt: "Interests", Type: campaignmodels.QuestionTypeCheckbox, Required: false, Options: []string{"hardware", "software", "outreach"}},
	{ID: "q_nickname", Prompt: "Nickname", Type: campaignmodels.QuestionTypeText, Required: false, MaxLength: 10},
}

func TestValidateAnswers_AllValid(t *testing.T) {
	warnings, err := ValidateAnswers(questions, map[string]models.Answer{
		"q_motivation": models.TextAnswer("I love robots."),
		"q_year":       models.TextAnswer("2"),
		"q_interests":  models.MultiAnswer("hardware", "software"),
	})
	require.NoError(t, err)
	assert.Empty(t, warnings)
}

func TestValidateAnswers_CollectsEveryViolation(t *testing.T) {
	_, err := ValidateAnswers(questions, map[string]models.Answer{
		// q_motivation missing entirely
		"q_year":       models.TextAnswer("12"),                  // not an option
		"q_interests":  models.MultiAnswer("hardware", "karate"), // one bad member
		"q_nickname":   models.TextAnswer("an overly long nickname"),
	})
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))

	fields := dErrors.FieldsOf(err)
	assert.Equal(t, ErrRequired, fields["q_motivation"])
	assert.Equal(t, ErrInvalidOption, fields["q_year"])
	assert.Equal(t, ErrInvalidOption, fields["q_interests"])
	assert.Equal(t, ErrTooLong, fields["q_nickname"])
}

func TestValidateAnswers_OptionalQuestionsMayBeEmpty(t *testing.T) {
	_, err := ValidateAnswers(questions, map[string]models.Answer{
		"q_motivation": models.TextAnswer("Because."),
		"q_year":       models.TextAnswer("4"),
	})
	assert.NoError(t, err)
}

func TestValidateAnswers_RequiredRejectsWhitespaceOnly(t *testing.T) {
	_, err := ValidateAnswers(questions, map[string]models.Answer{
		"q_motivation": models.TextAnswer("   "),
		"q_year":       models.TextAnswer("1"),
	})
	require.Error(t, err)
	assert.Equal(t, ErrRequired, dErrors.FieldsOf(err)["q_motivation"])
}

func TestValidateAnswers_UnknownTypePassesAsOpaqueText(t *testing.T) {
	exotic := []campaignmodels.ApplicationQuestion{
		{ID: "q_rating", Prompt: "Rate us", Type: "slider", Required: true, MaxLength: 3},
	}

	warnings, err := ValidateAnswers(exotic, map[string]models.Answer{
		"q_rating": models.TextAnswer("9"),
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"q_rating"}, warnings)

	// required and max_length still apply to unknown types
	_, err = ValidateAnswers(exotic, map[string]models.Answer{})
	require.Error(t, err)
	assert.Equal(t, ErrRequired, dErrors.FieldsOf(err)["q_rating"])

	_, err = ValidateAnswers(exotic, map[string]models.Answer{
		"q_rating": models.TextAnswer("9000"),
	})
	require.Error(t, err)
	assert.Equal(t, ErrTooLong, dErrors.FieldsOf(err)["q_rating"])
}

func TestAnswerJSONRoundTrip(t *testing.T) {
	t.Run("string form", func(t *testing.T) {
		var a models.Answer
		require.NoError(t, a.UnmarshalJSON([]byte(`"two"`)))
		assert.Equal(t, "two", a.Text)
		assert.False(t, a.IsMulti())
	})

	t.Run("array form", func(t *testing.T) {
		var a models.Answer
		require.NoError(t, a.UnmarshalJSON([]byte(`["hardware","outreach"]`)))
		assert.Equal(t, []string{"hardware", "outreach"}, a.Selections)
		assert.True(t, a.IsMulti())
	})

	t.Run("rejects objects", func(t *testing.T) {
		var a models.Answer
		err := a.UnmarshalJSON([]byte(`{"no":"pe"}`))
		require.Error(t, err)
	})
}
