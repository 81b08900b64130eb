package inject_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/km-arc/go-guice/inject"
)

func TestKey_EqualityAndQualifier(t *testing.T) {
	t.Parallel()

	assert.Equal(t, inject.Of[*Database](), inject.Of[*Database]())
	assert.NotEqual(t, inject.Of[*Database](), inject.Named[*Database]("audit"))
	assert.NotEqual(t, inject.Of[*Database](), inject.Of[*Cache]())

	k := inject.Named[*Database]("audit")
	assert.True(t, k.Qualified())
	assert.Equal(t, "audit", k.Name())
	assert.False(t, inject.Of[*Database]().Qualified())
}

func TestKey_WithName(t *testing.T) {
	t.Parallel()

	base := inject.Of[*Database]()
	named := base.WithName("audit")

	assert.Equal(t, inject.Named[*Database]("audit"), named)
	// base is unchanged
	assert.False(t, base.Qualified())
}

func TestKey_String(t *testing.T) {
	t.Parallel()

	assert.Contains(t, inject.Of[*Database]().String(), "Database")
	assert.Contains(t, inject.Named[*Database]("audit").String(), `name="audit"`)
	assert.Contains(t, inject.Of[Greeter]().String(), "Greeter")
}

func TestKeyOf_Conventions(t *testing.T) {
	t.Parallel()

	// Key passthrough
	k := inject.Named[*Database]("audit")
	assert.Equal(t, k, inject.KeyOf(k))

	// nil interface pointer token
	assert.Equal(t, inject.Of[Greeter](), inject.KeyOf((*Greeter)(nil)))

	// plain value keyed by dynamic type
	assert.Equal(t, inject.Of[*Database](), inject.KeyOf(&Database{}))
	assert.Equal(t, inject.Of[string](), inject.KeyOf("x"))

	require.Panics(t, func() { inject.KeyOf(nil) })
}
