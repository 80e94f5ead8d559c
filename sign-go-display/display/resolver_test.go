package display

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sign-tools/sign-go-display/config"
	"sign-tools/sign-go-display/words"
)

func bitConfig(word int, bit uint, name string, priority int) *config.BitConfig {
	return &config.BitConfig{
		WordIndex: word,
		BitIndex:  bit,
		Name:      name,
		Enabled:   true,
		Priority:  priority,
		Message:   name,
	}
}

func TestResolveSkipsDisabledAndInactive(t *testing.T) {
	snap := words.Snapshot{0: 0b0011}
	disabled := bitConfig(0, 0, "DISABLED", 10)
	disabled.Enabled = false
	bits := []*config.BitConfig{
		disabled,
		bitConfig(0, 1, "ACTIVE", 5),
		bitConfig(0, 2, "BIT OFF", 5),
	}

	active := Resolve(snap, bits)
	require.Len(t, active, 1)
	assert.Equal(t, "ACTIVE", active[0].Text)
}

func TestResolveMissingWordMeansInactive(t *testing.T) {
	snap := words.Snapshot{}
	active := Resolve(snap, []*config.BitConfig{bitConfig(7, 0, "GONE", 1)})
	assert.Empty(t, active)
}

func TestResolveOrdersByPriorityDescending(t *testing.T) {
	snap := words.Snapshot{0: 0b0111}
	bits := []*config.BitConfig{
		bitConfig(0, 0, "LOW", 1),
		bitConfig(0, 1, "HIGH", 10),
		bitConfig(0, 2, "MID", 5),
	}

	active := Resolve(snap, bits)
	require.Len(t, active, 3)
	assert.Equal(t, "HIGH", active[0].Text)
	assert.Equal(t, "MID", active[1].Text)
	assert.Equal(t, "LOW", active[2].Text)
}

func TestResolveEqualPriorityKeepsAuthoringOrder(t *testing.T) {
	snap := words.Snapshot{0: 0b0111}
	bits := []*config.BitConfig{
		bitConfig(0, 0, "FIRST", 5),
		bitConfig(0, 1, "SECOND", 5),
		bitConfig(0, 2, "THIRD", 5),
	}

	active := Resolve(snap, bits)
	require.Len(t, active, 3)
	assert.Equal(t, "FIRST", active[0].Text)
	assert.Equal(t, "SECOND", active[1].Text)
	assert.Equal(t, "THIRD", active[2].Text)
}

func TestResolveRendersTemplateWhenEnabled(t *testing.T) {
	snap := words.Snapshot{0: 0x0001, 3: 150}
	bc := bitConfig(0, 0, "fallback", 1)
	bc.UseTemplate = true
	bc.MessageTemplate = "NIVEL: {Word[3]/10} m"

	active := Resolve(snap, []*config.BitConfig{bc})
	require.Len(t, active, 1)
	assert.Equal(t, "NIVEL: 15.0 m", active[0].Text)
}

func TestResolveBlankTemplateFallsBackToStaticText(t *testing.T) {
	snap := words.Snapshot{0: 0x0001}
	bc := bitConfig(0, 0, "STATIC", 1)
	bc.UseTemplate = true
	bc.MessageTemplate = "   "

	active := Resolve(snap, []*config.BitConfig{bc})
	require.Len(t, active, 1)
	assert.Equal(t, "STATIC", active[0].Text)
}

func TestResolveExcludesWhitespaceOnlyText(t *testing.T) {
	snap := words.Snapshot{0: 0x0003}
	silent := bitConfig(0, 0, "", 10)
	silent.Message = "  "
	bits := []*config.BitConfig{silent, bitConfig(0, 1, "VISIBLE", 1)}

	active := Resolve(snap, bits)
	require.Len(t, active, 1)
	assert.Equal(t, "VISIBLE", active[0].Text)
}
