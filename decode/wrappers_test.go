package decode

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/spanyaml/spanyaml/ir"
)

func TestSpanned(t *testing.T) {
	var s struct {
		Port Spanned[int] `yaml:"port"`
	}
	require.NoError(t, IntoRef(doc(t, "port: 8080\n"), &s))
	require.Equal(t, 8080, s.Port.Value)
	require.Equal(t, "[6,10)", s.Port.Span.String())
	require.Equal(t, 1, s.Port.Span.Start.Line)
	require.Equal(t, 7, s.Port.Span.Start.Column)
}

func upperStrings(v *ir.Value) (*ir.Value, error) {
	if v.Kind != ir.StringKind {
		return nil, nil
	}
	nv := ir.FromString(strings.ToUpper(v.Str))
	nv.Span = v.Span
	return nv, nil
}

func TestVerbatimDisablesTransformer(t *testing.T) {
	var s struct {
		Name string           `yaml:"name"`
		ID   Verbatim[string] `yaml:"id"`
	}
	err := IntoRef(doc(t, "name: web\nid: ab-12\n"), &s, WithTransformer(upperStrings))
	require.NoError(t, err)
	require.Equal(t, "WEB", s.Name, "sibling fields still transform")
	require.Equal(t, "ab-12", s.ID.Value, "verbatim subtree must not transform")
	require.True(t, s.ID.Present)
}

func TestVerbatimAbsentVsNull(t *testing.T) {
	var s struct {
		C Verbatim[*ir.Value] `yaml:"c"`
	}
	require.NoError(t, IntoRef(doc(t, "c: ~\n"), &s))
	require.True(t, s.C.Present)
	require.True(t, s.C.Value.IsNull())

	require.NoError(t, IntoRef(doc(t, "{}"), &s))
	require.False(t, s.C.Present)
	require.Nil(t, s.C.Value)
}

func TestShouldBeRecovery(t *testing.T) {
	var s struct {
		Port ShouldBe[int] `yaml:"port"`
		Name string        `yaml:"name"`
	}
	require.NoError(t, IntoRef(doc(t, "port: oops\nname: n\n"), &s))
	require.True(t, s.Port.Isnt())
	require.Error(t, s.Port.Err())
	require.Contains(t, s.Port.Err().Error(), "invalid type")
	require.True(t, ir.Equal(s.Port.Raw(), ir.FromString("oops")))
	require.Equal(t, "n", s.Name, "decoding continues past the recovered field")

	raw := s.Port.TakeRaw()
	require.NotNil(t, raw)
	require.Nil(t, s.Port.Raw())

	require.NoError(t, IntoRef(doc(t, "port: 80\nname: n\n"), &s))
	require.True(t, s.Port.Is())
	got, ok := s.Port.Get()
	require.True(t, ok)
	require.Equal(t, 80, got)
	require.Nil(t, s.Port.Raw())
}

func TestShouldBeNoRawFromStream(t *testing.T) {
	var s struct {
		Port ShouldBe[int] `yaml:"port"`
	}
	require.NoError(t, Root([]byte("port: oops\n"), &s, nil))
	require.True(t, s.Port.Isnt())
	require.Error(t, s.Port.Err())
	require.Nil(t, s.Port.Raw(), "raw capture is an in-memory-only feature")
}
