package waffles

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIPDictAccessors(t *testing.T) {
	d := IPDict{
		"int_ll":          135,
		"threshold":       30.5,
		"baseline_limits": []int{0, 100},
	}

	i, err := d.Int("int_ll")
	assert.NoError(t, err)
	assert.Equal(t, 135, i)

	f, err := d.Float("threshold")
	assert.NoError(t, err)
	assert.Equal(t, 30.5, f)

	// Integer-valued parameters widen to float.
	f, err = d.Float("int_ll")
	assert.NoError(t, err)
	assert.Equal(t, 135.0, f)

	s, err := d.Ints("baseline_limits")
	assert.NoError(t, err)
	assert.Equal(t, []int{0, 100}, s)

	_, err = d.Int("threshold")
	assert.Error(t, err, "float parameter read as int should fail")
}

func TestIPDictMissNamesAvailableKeys(t *testing.T) {
	d := IPDict{"int_ll": 135, "amp_ll": 100}
	_, err := d.Get("int_ul")
	if !errors.Is(err, ErrMissingKey) {
		t.Fatalf("miss gives %v, want ErrMissingKey", err)
	}
	msg := err.Error()
	for _, want := range []string{"int_ul", "amp_ll", "int_ll"} {
		if !strings.Contains(msg, want) {
			t.Errorf("error %q does not mention %q", msg, want)
		}
	}
}

func TestORDictFloat(t *testing.T) {
	d := ORDict{"baseline": 100.25, "npeaks": 2}

	v, err := d.Float("baseline")
	assert.NoError(t, err)
	assert.Equal(t, 100.25, v)

	v, err = d.Float("npeaks")
	assert.NoError(t, err)
	assert.Equal(t, 2.0, v)

	_, err = d.Float("integral")
	assert.ErrorIs(t, err, ErrMissingKey)
}
