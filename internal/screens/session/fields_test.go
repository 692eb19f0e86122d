package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/quizplay/internal/quiz"
)

const choiceMarkup = `<div class="que multichoice">
<input type="hidden" name="q7:1_:sequencecheck" value="2"/>
<div class="qtext">Largest planet?</div>
<label><input type="radio" name="q7:1_answer" value="0"/> Mars</label>
<label><input type="radio" name="q7:1_answer" value="1" checked="checked"/> Jupiter</label>
<label for="q7:1_sure">Sure?</label><input type="checkbox" id="q7:1_sure" name="q7:1_sure" value="1"/>
</div>`

const selectMarkup = `<div class="que match">
<label for="m">Paris is in</label>
<select id="m" name="q7:2_sub0"><option value="">Choose...</option><option value="1" selected>France</option></select>
</div>`

func TestBuildFieldsGroupsRadios(t *testing.T) {
	fields := buildFields([]quiz.Question{
		{Slot: 1, HTML: choiceMarkup},
		{Slot: 2, HTML: selectMarkup},
	})
	require.Len(t, fields, 3)

	radio := fields[0]
	assert.Equal(t, kindChoice, radio.Kind)
	assert.Equal(t, "q7:1_answer", radio.Name)
	assert.Equal(t, "1", radio.Default)
	require.Len(t, radio.Choices, 2)
	assert.Equal(t, "Mars", radio.Choices[0].Label)

	check := fields[1]
	assert.Equal(t, kindCheck, check.Kind)
	assert.Equal(t, "1", check.On)
	assert.Equal(t, "", check.Default)

	sel := fields[2]
	assert.Equal(t, 2, sel.Slot)
	assert.Equal(t, kindChoice, sel.Kind)
	assert.Equal(t, "1", sel.Default)
	assert.Equal(t, "Paris is in", sel.Label)
}

func TestFieldDisplayPrefersBufferedValue(t *testing.T) {
	fields := buildFields([]quiz.Question{{Slot: 1, HTML: choiceMarkup}})

	assert.Equal(t, "Jupiter", fields[0].display(nil))
	assert.Equal(t, "Mars", fields[0].display(quiz.Answers{"q7:1_answer": "0"}))
	assert.Equal(t, "[ ]", fields[1].display(nil))
	assert.Equal(t, "[x]", fields[1].display(quiz.Answers{"q7:1_sure": "1"}))
}
