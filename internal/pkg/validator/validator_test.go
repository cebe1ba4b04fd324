package validator

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSlug(t *testing.T) {

	type Slug struct {
		S string `validate:"slug"`
	}

	testCases := []struct {
		Name     string
		Value    string
		Expected bool
	}{
		{
			Name:     "valid",
			Value:    "valid-slug_123",
			Expected: true,
		},
		{
			Name:     "invalid",
			Value:    "invalid/!?",
			Expected: false,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.Name, func(t *testing.T) {

			err := Validate.Struct(&Slug{
				S: tc.Value,
			})

			if tc.Expected {
				require.NoError(t, err)
			} else {
				require.Error(t, err)
			}
		})
	}
}

func TestChannelParamsAreSlugs(t *testing.T) {

	type VersionCoords struct {
		Platform string `validate:"required,slug"`
		Channel  string `validate:"required,slug"`
	}

	require.NoError(t, Validate.Struct(&VersionCoords{Platform: "win", Channel: "stable"}))
	require.Error(t, Validate.Struct(&VersionCoords{Platform: "win", Channel: "sta ble"}))
	require.Error(t, Validate.Struct(&VersionCoords{Platform: "", Channel: "stable"}))
}
