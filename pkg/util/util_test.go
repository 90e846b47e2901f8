package util

import (
	"strings"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		title string
		want  string
	}{
		{"Hello World", "hello-world"},
		{"  Déjà vu, encore!  ", "deja-vu-encore"},
		{"Crème brûlée", "creme-brulee"},
		{"a--b__c", "a-b-c"},
		{"日本語", ""},
		{"", ""},
		{"2024 Plans: Q1/Q2", "2024-plans-q1-q2"},
	}
	for _, tt := range tests {
		t.Run(tt.title, func(t *testing.T) {
			assert.Equal(t, tt.want, Slugify(tt.title))
		})
	}
}

func TestSlugify_Truncates(t *testing.T) {
	s := Slugify(strings.Repeat("ab ", 200))
	assert.LessOrEqual(t, len(s), MaxSlugLength)
	assert.True(t, IsValidSlug(s))
}

// slug 生成结果要么为空，要么满足格式且幂等
func TestProperty_SlugifyIsValidAndIdempotent(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200

	properties := gopter.NewProperties(parameters)

	properties.Property("slugify output is empty or a valid, stable slug", prop.ForAll(
		func(title string) bool {
			s := Slugify(title)
			if s == "" {
				return true
			}
			return IsValidSlug(s) && Slugify(s) == s
		},
		gen.AnyString(),
	))

	properties.TestingRun(t)
}

func TestIsValidSlug(t *testing.T) {
	assert.True(t, IsValidSlug("my-note-1"))
	assert.False(t, IsValidSlug(""))
	assert.False(t, IsValidSlug("My-Note"))
	assert.False(t, IsValidSlug("-lead"))
	assert.False(t, IsValidSlug("double--dash"))
	assert.False(t, IsValidSlug("a:b"))
}

func TestParseDuration(t *testing.T) {
	d, err := ParseDuration("7d")
	require.NoError(t, err)
	assert.Equal(t, 7*24*time.Hour, d)

	d, err = ParseDuration("30")
	require.NoError(t, err)
	assert.Equal(t, 30*time.Second, d)

	d, err = ParseDuration(" 5m ")
	require.NoError(t, err)
	assert.Equal(t, 5*time.Minute, d)

	_, err = ParseDuration("xd")
	assert.Error(t, err)

	assert.Equal(t, time.Minute, ParseDurationOr("", time.Minute))
	assert.Equal(t, time.Hour, ParseDurationOr("1h", time.Minute))
}

func TestPasswordHash(t *testing.T) {
	hash, err := GeneratePasswordHash("secret")
	require.NoError(t, err)
	assert.NotEqual(t, "secret", hash)
	assert.True(t, CheckPasswordHash(hash, "secret"))
	assert.False(t, CheckPasswordHash(hash, "Secret"))
	assert.False(t, CheckPasswordAgainstNothing("secret"))
}

func TestGetRandomString(t *testing.T) {
	a := GetRandomString(32)
	b := GetRandomString(32)
	assert.Len(t, a, 32)
	assert.NotEqual(t, a, b)
}
