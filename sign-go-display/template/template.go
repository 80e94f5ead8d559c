// Package template implements the message templating DSL embedded in bit
// configurations. Tags reference PLC registers by index:
//
//	{Word[N]}  {Word[N]/D}  {Word[N]*M}   unsigned register N
//	{Int[N]}   {Int[N]/D}   {Int[N]*M}    register N as signed 16-bit
//	{Real[N]}  {Real[N]:D}                float32 from registers N and N+1
//
// Rendering never fails: unresolvable references and arithmetic hazards
// degrade to literal placeholders so a partially configured template still
// shows something on the sign.
package template

import (
	"fmt"
	"math"
	"math/rand"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"sign-tools/sign-go-display/config"
	"sign-tools/sign-go-display/words"
)

const (
	// Placeholder for a register absent from the snapshot.
	missingPlaceholder = "{...}"
	// Placeholder for division by zero and non-finite floats.
	invalidPlaceholder = "---"

	defaultRealDecimals = 2

	// Advisory authoring limits. Int and Word tags touch one register,
	// Real tags touch N and N+1, so the Real limit keeps the pair inside
	// the 256-register map.
	maxScalarIndex = 64
	maxRealIndex   = config.RegisterCount - 1
)

var (
	realTagRe = regexp.MustCompile(`\{Real\[(\d+)\](?::(\d+))?\}`)
	intTagRe  = regexp.MustCompile(`\{Int\[(\d+)\](?:([*/])(\d+(?:\.\d+)?))?\}`)
	wordTagRe = regexp.MustCompile(`\{Word\[(\d+)\](?:([*/])(\d+(?:\.\d+)?))?\}`)
)

// Render substitutes every tag in tpl with its value from snap. Passes run
// Real first, then Int, then Word; Word stays last for compatibility with
// old templates that only used Word tags. Text that matches no tag pattern
// is left untouched.
func Render(tpl string, snap words.Snapshot) string {
	out := realTagRe.ReplaceAllStringFunc(tpl, func(tag string) string {
		m := realTagRe.FindStringSubmatch(tag)
		return renderReal(m[1], m[2], snap)
	})
	out = intTagRe.ReplaceAllStringFunc(out, func(tag string) string {
		m := intTagRe.FindStringSubmatch(tag)
		return renderScalar(m[1], m[2], m[3], snap, true)
	})
	out = wordTagRe.ReplaceAllStringFunc(out, func(tag string) string {
		m := wordTagRe.FindStringSubmatch(tag)
		return renderScalar(m[1], m[2], m[3], snap, false)
	})
	return out
}

func renderScalar(idxStr, op, operandStr string, snap words.Snapshot, signed bool) string {
	idx, _ := strconv.Atoi(idxStr)
	raw, ok := snap.Word(idx)
	if !ok {
		return missingPlaceholder
	}
	var val float64
	if signed {
		val = float64(words.ToSigned16(raw))
	} else {
		val = float64(raw)
	}

	switch op {
	case "/":
		divisor, err := strconv.ParseFloat(operandStr, 64)
		if err != nil || divisor == 0 {
			return invalidPlaceholder
		}
		// A decimal point in the divisor literal asks for finer output.
		if strings.Contains(operandStr, ".") {
			return fmt.Sprintf("%.2f", val/divisor)
		}
		return fmt.Sprintf("%.1f", val/divisor)
	case "*":
		factor, err := strconv.ParseFloat(operandStr, 64)
		if err != nil {
			return invalidPlaceholder
		}
		return strconv.FormatInt(int64(math.Round(val*factor)), 10)
	default:
		return strconv.FormatInt(int64(val), 10)
	}
}

func renderReal(idxStr, decimalsStr string, snap words.Snapshot) string {
	idx, _ := strconv.Atoi(idxStr)
	hi, okHi := snap.Word(idx)
	lo, okLo := snap.Word(idx + 1)
	if !okHi || !okLo {
		return missingPlaceholder
	}
	f := float64(words.ToFloat32(hi, lo))
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return invalidPlaceholder
	}
	decimals := defaultRealDecimals
	if decimalsStr != "" {
		decimals, _ = strconv.Atoi(decimalsStr)
	}
	return strconv.FormatFloat(f, 'f', decimals, 64)
}

// Validate collects advisory authoring diagnostics for tpl: register
// indices outside the addressable map and unbalanced braces. It never
// blocks rendering.
func Validate(tpl string) []string {
	var problems []string

	for _, m := range realTagRe.FindAllStringSubmatch(tpl, -1) {
		idx, _ := strconv.Atoi(m[1])
		if idx > maxRealIndex {
			problems = append(problems, fmt.Sprintf("%s: Real index %d exceeds maximum %d", m[0], idx, maxRealIndex))
		}
	}
	for _, m := range intTagRe.FindAllStringSubmatch(tpl, -1) {
		idx, _ := strconv.Atoi(m[1])
		if idx > maxScalarIndex {
			problems = append(problems, fmt.Sprintf("%s: Int index %d exceeds maximum %d", m[0], idx, maxScalarIndex))
		}
	}
	for _, m := range wordTagRe.FindAllStringSubmatch(tpl, -1) {
		idx, _ := strconv.Atoi(m[1])
		if idx > maxScalarIndex {
			problems = append(problems, fmt.Sprintf("%s: Word index %d exceeds maximum %d", m[0], idx, maxScalarIndex))
		}
	}

	opens := strings.Count(tpl, "{")
	closes := strings.Count(tpl, "}")
	if opens != closes {
		problems = append(problems, fmt.Sprintf("unbalanced braces: %d '{' vs %d '}'", opens, closes))
	}
	return problems
}

// WordIndices returns the sorted, duplicate-free register indices the
// template references. Real tags contribute both N and N+1.
func WordIndices(tpl string) []int {
	seen := make(map[int]struct{})
	for _, m := range realTagRe.FindAllStringSubmatch(tpl, -1) {
		idx, _ := strconv.Atoi(m[1])
		seen[idx] = struct{}{}
		seen[idx+1] = struct{}{}
	}
	for _, m := range intTagRe.FindAllStringSubmatch(tpl, -1) {
		idx, _ := strconv.Atoi(m[1])
		seen[idx] = struct{}{}
	}
	for _, m := range wordTagRe.FindAllStringSubmatch(tpl, -1) {
		idx, _ := strconv.Atoi(m[1])
		seen[idx] = struct{}{}
	}
	out := make([]int, 0, len(seen))
	for idx := range seen {
		out = append(out, idx)
	}
	sort.Ints(out)
	return out
}

// PreviewSnapshot synthesizes a snapshot with a small random value in every
// register, so authoring previews can exercise the rendering pipeline
// without live PLC data. Never used for production rendering.
func PreviewSnapshot() words.Snapshot {
	snap := make(words.Snapshot, config.RegisterCount)
	for i := 0; i < config.RegisterCount; i++ {
		snap[i] = uint16(rand.Intn(100))
	}
	return snap
}
