package util

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLocalizedDecimal(t *testing.T) {
	tests := []struct {
		input   string
		want    string
		wantErr bool
	}{
		{input: "40.000", want: "40000"},
		{input: "1.234.567", want: "1234567"},
		{input: "1.234,56", want: "1234.56"},
		{input: "40,5", want: "40.5"},
		{input: "40000.75", want: "40000.75"},
		{input: "12.5", want: "12.5"},
		{input: " 150 000 ", want: "150000"},
		{input: "", wantErr: true},
		{input: "abc", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseLocalizedDecimal(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.String())
		})
	}
}

func TestParseLocalizedInt(t *testing.T) {
	tests := []struct {
		input   string
		want    int
		wantErr bool
	}{
		{input: "1.200", want: 1200},
		{input: "1,200", want: 1200},
		{input: "15", want: 15},
		{input: "", want: 0},
		{input: "-3", wantErr: true},
		{input: "1.5a", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseLocalizedInt(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLocalizedJSON(t *testing.T) {
	var body struct {
		Price LocalizedDecimal `json:"price"`
		Other LocalizedDecimal `json:"other"`
		Stock LocalizedInt     `json:"stock"`
	}
	err := json.Unmarshal([]byte(`{"price":"1.250.000","other":99.5,"stock":"1.200"}`), &body)
	require.NoError(t, err)
	assert.Equal(t, "1250000", body.Price.String())
	assert.Equal(t, "99.5", body.Other.String())
	assert.Equal(t, LocalizedInt(1200), body.Stock)

	err = json.Unmarshal([]byte(`{"stock":-1}`), &body)
	assert.ErrorIs(t, err, ErrNegative)
}
