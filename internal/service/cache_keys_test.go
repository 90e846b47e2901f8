package service

import (
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
)

func TestCacheKeys(t *testing.T) {
	assert.Equal(t, "note:u1:n1", NoteKey("u1", "n1"))
	assert.Equal(t, "note:slug:u1:hello", NoteSlugKey("u1", "hello"))
	assert.Equal(t, "notes:list:u1:2:10:go", NotesListKey("u1", 2, 10, "go"))
	assert.Equal(t, "notes:list:u1:1:10:", NotesListKey("u1", 1, 10, ""))
	assert.Equal(t, "shared:note:n1", SharedNoteKey("n1"))

	// ':' inside a component cannot forge another key
	assert.NotEqual(t, NoteKey("a:b", "c"), NoteKey("a", "b:c"))
	assert.Equal(t, "note:a%3Ab:c", NoteKey("a:b", "c"))
	assert.Equal(t, "note:100%25:x", NoteKey("100%", "x"))
	assert.NotEqual(t, NoteKey("slug", "x"), NoteSlugKey("x", ""))
}

func TestNotesListKey_SharesOwnerPrefix(t *testing.T) {
	key := NotesListKey("u:1", 3, 50, "a:b")
	assert.True(t, strings.HasPrefix(key, NotesListPrefix("u:1")))
	assert.False(t, strings.HasPrefix(key, NotesListPrefix("u")))
}

// 相同参数生成相同键，不同参数生成不同键
func TestProperty_CacheKeysAreDeterministicAndInjective(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 300
	properties := gopter.NewProperties(parameters)

	properties.Property("note keys are deterministic", prop.ForAll(
		func(owner, id string) bool {
			return NoteKey(owner, id) == NoteKey(owner, id)
		},
		gen.AnyString(), gen.AnyString(),
	))

	properties.Property("note keys are injective", prop.ForAll(
		func(o1, i1, o2, i2 string) bool {
			if o1 == o2 && i1 == i2 {
				return true
			}
			return NoteKey(o1, i1) != NoteKey(o2, i2)
		},
		gen.OneConstOf("a", "a:b", "b", "%3A", ":"), gen.OneConstOf("x", "b:x", "x:", ""),
		gen.OneConstOf("a", "a:b", "b", "%3A", ":"), gen.OneConstOf("x", "b:x", "x:", ""),
	))

	properties.Property("list keys differ when any parameter differs", prop.ForAll(
		func(p1, l1, p2, l2 int, s1, s2 string) bool {
			same := p1 == p2 && l1 == l2 && s1 == s2
			return (NotesListKey("u", p1, l1, s1) == NotesListKey("u", p2, l2, s2)) == same
		},
		gen.IntRange(1, 5), gen.IntRange(1, 50), gen.IntRange(1, 5), gen.IntRange(1, 50),
		gen.OneConstOf("", "go", "go:1", "1"), gen.OneConstOf("", "go", "go:1", "1"),
	))

	properties.TestingRun(t)
}
