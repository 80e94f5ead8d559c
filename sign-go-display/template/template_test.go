package template

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"sign-tools/sign-go-display/words"
)

func TestRenderNoTagsIsIdentity(t *testing.T) {
	snap := words.Snapshot{0: 42}
	for _, tpl := range []string{"", "PUMP RUNNING", "100% {not a tag}", "Word[3] without braces"} {
		assert.Equal(t, tpl, Render(tpl, snap))
	}
}

func TestRenderWordTags(t *testing.T) {
	snap := words.Snapshot{5: 10, 6: 1500}

	assert.Equal(t, "10", Render("{Word[5]}", snap))
	assert.Equal(t, "FLOW: 150.0 L/s", Render("FLOW: {Word[6]/10} L/s", snap))
	assert.Equal(t, "150.00", Render("{Word[6]/10.0}", snap), "decimal point in divisor asks for 2 places")
	assert.Equal(t, "30", Render("{Word[5]*3}", snap))
	assert.Equal(t, "25", Render("{Word[5]*2.5}", snap), "multiplication rounds to nearest integer")
}

func TestRenderIntTags(t *testing.T) {
	snap := words.Snapshot{0: 65535, 1: 65436}

	assert.Equal(t, "NIVEL: -1 cm", Render("NIVEL: {Int[0]} cm", snap))
	assert.Equal(t, "-10.0", Render("{Int[1]/10}", snap))
	assert.Equal(t, "-200", Render("{Int[1]*2}", snap))
}

func TestRenderRealTags(t *testing.T) {
	hi, lo := words.Float32ToWords(3.14159)
	snap := words.Snapshot{10: hi, 11: lo}

	assert.Equal(t, "3.14", Render("{Real[10]}", snap))
	assert.Equal(t, "3.1416", Render("{Real[10]:4}", snap))
	assert.Equal(t, "3", Render("{Real[10]:0}", snap))
}

func TestRenderMixedKinds(t *testing.T) {
	hi, lo := words.Float32ToWords(1.5)
	snap := words.Snapshot{0: 7, 1: 65535, 3: hi, 4: lo}

	got := Render("W={Word[0]} I={Int[1]} R={Real[3]}", snap)
	assert.Equal(t, "W=7 I=-1 R=1.50", got)
}

func TestRenderMissingRegister(t *testing.T) {
	snap := words.Snapshot{0: 1}

	assert.Equal(t, "{...}", Render("{Word[9]}", snap))
	assert.Equal(t, "{...}", Render("{Int[9]}", snap))
	assert.Equal(t, "{...}", Render("{Real[9]}", snap), "both halves absent")

	// Real needs N and N+1; only N present still renders the placeholder.
	snap[9] = 100
	assert.Equal(t, "{...}", Render("{Real[9]}", snap))
}

func TestRenderArithmeticHazards(t *testing.T) {
	snap := words.Snapshot{5: 10}
	assert.Equal(t, "---", Render("{Word[5]/0}", snap))
	assert.Equal(t, "---", Render("{Int[5]/0}", snap))

	// Quiet NaN and +Inf encodings.
	snap[20], snap[21] = 0x7FC0, 0x0000
	snap[30], snap[31] = 0x7F80, 0x0000
	assert.Equal(t, "---", Render("{Real[20]}", snap))
	assert.Equal(t, "---", Render("{Real[30]}", snap))
}

func TestValidate(t *testing.T) {
	assert.Empty(t, Validate("NIVEL: {Int[0]} cm {Word[64]} {Real[255]}"))

	problems := Validate("{Word[65]} {Int[100]} {Real[256]}")
	assert.Len(t, problems, 3)

	problems = Validate("{Word[3] no closing brace")
	assert.Len(t, problems, 1)
	assert.Contains(t, problems[0], "unbalanced braces")
}

func TestWordIndices(t *testing.T) {
	assert.Equal(t, []int{10, 11}, WordIndices("{Real[10]}"))
	assert.Equal(t, []int{3}, WordIndices("{Int[3]} {Word[3]}"))
	assert.Equal(t, []int{0, 5, 6, 7}, WordIndices("{Word[0]} {Real[5]:1} {Int[7]} {Word[5]}"))
	assert.Empty(t, WordIndices("no tags here"))
}

func TestPreviewSnapshot(t *testing.T) {
	snap := PreviewSnapshot()
	assert.Len(t, snap, 256)
	for i, v := range snap {
		assert.GreaterOrEqual(t, i, 0)
		assert.Less(t, i, 256)
		assert.Less(t, v, uint16(100))
	}

	// Preview rendering must never produce the missing placeholder.
	got := Render("{Word[0]} {Int[64]} {Real[254]}", snap)
	assert.NotContains(t, got, "{...}")
}
