package view

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewEngine(t *testing.T) {
	engine, err := NewEngine()
	assert.NoError(t, err, "Templates should parse without error")
	assert.NotNil(t, engine)
	assert.NotNil(t, engine.templates.Lookup("reports/travel_report.html"))
}

func TestRenderUnknownTemplate(t *testing.T) {
	engine, err := NewEngine()
	assert.NoError(t, err)
	_, err = engine.RenderString("reports/missing.html", nil)
	assert.Error(t, err)

	var nilEngine *Engine
	assert.Error(t, nilEngine.Execute(nil, "x", nil))
}
