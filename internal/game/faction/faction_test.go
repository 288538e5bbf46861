package faction_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/torvik/gridfall/internal/game/faction"
)

// TestResolver_Defaults verifies unknown pairs are Hostile and identical
// factions are always Ally.
func TestResolver_Defaults(t *testing.T) {
	r := faction.NewResolver()
	assert.Equal(t, faction.Hostile, r.Get("vanguard", "marauders"))
	assert.Equal(t, faction.Ally, r.Get("vanguard", "vanguard"))
	assert.True(t, r.IsHostile("a", "b"))
	assert.True(t, r.IsAlly("a", "a"))
}

// TestResolver_SetIsBidirectional verifies the symmetry invariant after writes.
func TestResolver_SetIsBidirectional(t *testing.T) {
	r := faction.NewResolver()
	r.Set("vanguard", "wardens", faction.Ally)
	assert.Equal(t, faction.Ally, r.Get("vanguard", "wardens"))
	assert.Equal(t, faction.Ally, r.Get("wardens", "vanguard"))

	r.Set("wardens", "vanguard", faction.Neutral)
	assert.Equal(t, faction.Neutral, r.Get("vanguard", "wardens"),
		"later writes must win in both directions")
}

// TestResolver_SelfSetIgnored verifies a faction cannot be made hostile to
// itself.
func TestResolver_SelfSetIgnored(t *testing.T) {
	r := faction.NewResolver()
	r.Set("vanguard", "vanguard", faction.Hostile)
	assert.Equal(t, faction.Ally, r.Get("vanguard", "vanguard"))
}

// TestResolver_Symmetry_Property verifies Get(a,b) == Get(b,a) after an
// arbitrary write sequence.
func TestResolver_Symmetry_Property(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		r := faction.NewResolver()
		names := []string{"a", "b", "c", "d"}
		writes := rapid.IntRange(0, 20).Draw(rt, "writes")
		for i := 0; i < writes; i++ {
			a := rapid.SampledFrom(names).Draw(rt, "fa")
			b := rapid.SampledFrom(names).Draw(rt, "fb")
			rel := faction.Relationship(rapid.IntRange(0, 2).Draw(rt, "rel"))
			r.Set(a, b, rel)
		}
		for _, a := range names {
			for _, b := range names {
				assert.Equal(rt, r.Get(a, b), r.Get(b, a),
					"Get(%s,%s) must equal Get(%s,%s)", a, b, b, a)
			}
		}
	})
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "factions.yaml")
	content := `relationships:
  - a: vanguard
    b: wardens
    relation: ally
  - a: vanguard
    b: drifters
    relation: neutral
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	r, err := faction.LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, faction.Ally, r.Get("vanguard", "wardens"))
	assert.Equal(t, faction.Neutral, r.Get("drifters", "vanguard"))
	assert.Equal(t, faction.Hostile, r.Get("vanguard", "marauders"),
		"pairs absent from the file keep the Hostile default")
}

func TestLoadFile_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"self pair", "relationships:\n  - {a: x, b: x, relation: ally}\n"},
		{"unknown relation", "relationships:\n  - {a: x, b: y, relation: friendly}\n"},
		{"empty name", "relationships:\n  - {a: \"\", b: y, relation: ally}\n"},
		{"unknown field", "relationships:\n  - {a: x, b: y, relation: ally, weight: 3}\n"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "factions.yaml")
			require.NoError(t, os.WriteFile(path, []byte(tc.content), 0o644))
			_, err := faction.LoadFile(path)
			assert.Error(t, err)
		})
	}
}
