package platform

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	oerrors "github.com/azp-tools/matrix/internal/errors"
)

func testSpec() Spec {
	return Spec{
		Expected: []Entry{
			{ID: "fedora37", Group: "fedora"},
			{ID: "rhel/7.9", Group: "rhel"},
			{ID: "rhel/9.1", Group: "rhel"},
		},
		Deprecated: []DeprecatedEntry{
			{ID: "fedora30", Group: "fedora", Replacement: "fedora37"},
			{ID: "fedora31", Group: "fedora", Replacement: "fedora37"},
			{ID: "rhel/7.8", Group: "rhel"},
		},
		Special: []Entry{
			{ID: "default", Group: "default"},
		},
	}
}

func TestNewRegistry_Valid(t *testing.T) {
	reg, err := NewRegistry(testSpec())
	require.NoError(t, err)
	assert.Equal(t, 7, reg.Len())

	g, m := reg.Lookup("rhel/9.1")
	assert.Equal(t, Group("rhel"), g)
	assert.Equal(t, Expected, m)

	g, m = reg.Lookup("fedora30")
	assert.Equal(t, Group("fedora"), g)
	assert.Equal(t, Deprecated, m)

	g, m = reg.Lookup("default")
	assert.Equal(t, Group("default"), g)
	assert.Equal(t, Special, m)

	_, m = reg.Lookup("centos7")
	assert.Equal(t, Untracked, m)
}

func TestNewRegistry_Replacement(t *testing.T) {
	reg, err := NewRegistry(testSpec())
	require.NoError(t, err)

	repl, ok := reg.Replacement("fedora30")
	assert.True(t, ok)
	assert.Equal(t, ID("fedora37"), repl)

	_, ok = reg.Replacement("rhel/7.8")
	assert.False(t, ok, "deprecated without replacement")

	_, ok = reg.Replacement("fedora37")
	assert.False(t, ok, "expected platforms have no replacement")
}

func TestNewRegistry_SharedReplacement(t *testing.T) {
	reg, err := NewRegistry(Spec{
		Expected: []Entry{{ID: "rhel/7.9", Group: "rhel"}},
		Deprecated: []DeprecatedEntry{
			{ID: "rhel/7.6", Group: "rhel", Replacement: "rhel/7.9"},
			{ID: "rhel/7.8", Group: "rhel", Replacement: "rhel/7.9"},
		},
	})
	require.NoError(t, err, "several deprecated platforms may share one replacement")

	for _, id := range []ID{"rhel/7.6", "rhel/7.8"} {
		repl, ok := reg.Replacement(id)
		assert.True(t, ok, id)
		assert.Equal(t, ID("rhel/7.9"), repl, id)
	}
}

func TestNewRegistry_Invariants(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Spec)
		id     ID
		reason string
	}{
		{
			name: "expected and deprecated",
			mutate: func(s *Spec) {
				s.Deprecated = append(s.Deprecated, DeprecatedEntry{ID: "rhel/9.1", Group: "rhel"})
			},
			id:     "rhel/9.1",
			reason: "both expected and deprecated",
		},
		{
			name: "expected and special",
			mutate: func(s *Spec) {
				s.Special = append(s.Special, Entry{ID: "fedora37", Group: "fedora"})
			},
			id:     "fedora37",
			reason: "both expected and special",
		},
		{
			name: "special and deprecated",
			mutate: func(s *Spec) {
				s.Deprecated = append(s.Deprecated, DeprecatedEntry{ID: "default", Group: "default"})
			},
			id:     "default",
			reason: "both special and deprecated",
		},
		{
			name: "two different replacements",
			mutate: func(s *Spec) {
				s.Deprecated = append(s.Deprecated, DeprecatedEntry{ID: "fedora30", Group: "fedora", Replacement: "rhel/9.1"})
			},
			id:     "fedora30",
			reason: "two different replacements",
		},
		{
			name: "duplicate deprecated",
			mutate: func(s *Spec) {
				s.Deprecated = append(s.Deprecated, DeprecatedEntry{ID: "rhel/7.8", Group: "rhel"})
			},
			id:     "rhel/7.8",
			reason: "twice as deprecated",
		},
		{
			name: "duplicate expected",
			mutate: func(s *Spec) {
				s.Expected = append(s.Expected, Entry{ID: "rhel/7.9", Group: "rhel"})
			},
			id:     "rhel/7.9",
			reason: "twice as expected",
		},
		{
			name: "replacement not expected",
			mutate: func(s *Spec) {
				s.Deprecated = append(s.Deprecated, DeprecatedEntry{ID: "fedora29", Group: "fedora", Replacement: "fedora38"})
			},
			id:     "fedora29",
			reason: "not an expected platform",
		},
		{
			name: "replacement is deprecated",
			mutate: func(s *Spec) {
				s.Deprecated = append(s.Deprecated, DeprecatedEntry{ID: "rhel/7.6", Group: "rhel", Replacement: "rhel/7.8"})
			},
			id:     "rhel/7.6",
			reason: "not an expected platform",
		},
		{
			name: "missing group",
			mutate: func(s *Spec) {
				s.Expected = append(s.Expected, Entry{ID: "ubuntu2204"})
			},
			id:     "ubuntu2204",
			reason: "no group",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spec := testSpec()
			tt.mutate(&spec)

			reg, err := NewRegistry(spec)
			require.Error(t, err)
			assert.Nil(t, reg)

			var cfgErr *DeprecationConfigError
			require.True(t, errors.As(err, &cfgErr))
			assert.Equal(t, tt.id, cfgErr.ID)
			assert.Contains(t, cfgErr.Reason, tt.reason)
			assert.True(t, errors.Is(err, oerrors.ErrValidation))
		})
	}
}

func TestRegistry_TablesAreDisjoint(t *testing.T) {
	reg, err := Default()
	require.NoError(t, err)

	seen := make(map[ID]string)
	for _, rec := range reg.Records() {
		prev, dup := seen[rec.ID]
		assert.False(t, dup, "%s listed in %s and %s", rec.ID, prev, rec.Table)
		seen[rec.ID] = rec.Table
	}
}

func TestRegistry_Records(t *testing.T) {
	reg, err := NewRegistry(testSpec())
	require.NoError(t, err)

	records := reg.Records()
	require.Len(t, records, 7)

	ids := make([]ID, len(records))
	for i, r := range records {
		ids[i] = r.ID
	}
	assert.Equal(t, []ID{"fedora37", "rhel/7.9", "rhel/9.1", "fedora30", "fedora31", "rhel/7.8", "default"}, ids)
	assert.Equal(t, KindVM, records[1].Kind)
	assert.Equal(t, KindContainer, records[0].Kind)
	assert.Equal(t, ID("fedora37"), records[3].Replacement)
	assert.Equal(t, "deprecated", records[3].Table)
}

func TestRegistry_ExpectedIsCopy(t *testing.T) {
	reg, err := NewRegistry(testSpec())
	require.NoError(t, err)

	exp := reg.Expected()
	delete(exp, "fedora37")

	_, m := reg.Lookup("fedora37")
	assert.Equal(t, Expected, m)
}

func TestID_Kind(t *testing.T) {
	assert.Equal(t, KindContainer, ID("ubuntu2004").Kind())
	assert.Equal(t, KindVM, ID("freebsd/13.1").Kind())
}
