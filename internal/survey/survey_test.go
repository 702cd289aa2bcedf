package survey

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/godilite/commhealth/internal/engine"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleYAML = `
id: comms-2025
title: Communication Health
sections:
  - key: speaking_up
    name: Speaking Up
    questions:
      - id: su1
        text: I feel safe raising concerns.
        type: scale
        weight: 1.5
        options:
          - {label: Never, value: 1}
          - {label: Sometimes, value: 2}
          - {label: Often, value: 3}
          - {label: Always, value: 4}
      - id: su2
        text: Anything else?
        type: open
  - key: clarity
    name: Clarity
    questions:
      - id: cl1
        text: Priorities are clear.
        type: scale
`

func TestParse(t *testing.T) {
	t.Run("valid definition", func(t *testing.T) {
		def, err := Parse([]byte(sampleYAML))

		require.NoError(t, err)
		assert.Equal(t, "comms-2025", def.ID)
		assert.Equal(t, []string{"speaking_up", "clarity"}, def.SectionKeys())
		q, ok := def.Question("su1")
		require.True(t, ok)
		assert.Equal(t, 1.5, q.Weight)
		assert.Len(t, q.Options, 4)
		cl, _ := def.Question("cl1")
		assert.Equal(t, 1.0, cl.EffectiveWeight())
	})

	cases := []struct {
		name string
		yaml string
	}{
		{"missing id", "sections: [{key: a, questions: [{id: q, type: scale}]}]"},
		{"no sections", "id: x"},
		{"duplicate section", "id: x\nsections: [{key: a}, {key: a}]"},
		{"duplicate question", "id: x\nsections: [{key: a, questions: [{id: q, type: scale}]}, {key: b, questions: [{id: q, type: open}]}]"},
		{"negative weight", "id: x\nsections: [{key: a, questions: [{id: q, type: scale, weight: -1}]}]"},
		{"bad option", "id: x\nsections: [{key: a, questions: [{id: q, type: scale, options: [{label: Huge, value: 5}]}]}]"},
		{"unknown type", "id: x\nsections: [{key: a, questions: [{id: q, type: slider}]}]"},
		{"not yaml", "id: [unterminated"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse([]byte(tc.yaml))
			assert.ErrorIs(t, err, ErrInvalidDefinition)
		})
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "survey.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleYAML), 0o600))

	def, err := Load(path)
	require.NoError(t, err)
	assert.Len(t, def.Sections, 2)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestCheckAnswers(t *testing.T) {
	def, err := Parse([]byte(sampleYAML))
	require.NoError(t, err)

	assert.NoError(t, def.CheckAnswers(engine.Answers{"su1": {Scale: 4}, "su2": {Text: "no"}}))
	assert.ErrorIs(t, def.CheckAnswers(engine.Answers{"zz": {Scale: 1}}), engine.ErrInvalidAnswer)
	assert.ErrorIs(t, def.CheckAnswers(engine.Answers{"su1": {Scale: 9}}), engine.ErrInvalidAnswer)
	assert.ErrorIs(t, def.CheckAnswers(engine.Answers{"su1": {Text: "yes"}}), engine.ErrInvalidAnswer)
	assert.ErrorIs(t, def.CheckAnswers(engine.Answers{"su2": {Scale: 2}}), engine.ErrInvalidAnswer)
}
