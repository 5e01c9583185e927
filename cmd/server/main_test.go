package main

import (
	"bytes"
	"strings"
	"testing"
)

func TestImpactCommand(t *testing.T) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs([]string{"impact", "100"})
	t.Cleanup(func() { rootCmd.SetArgs(nil) })

	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("impact failed: %v", err)
	}

	for _, want := range []string{"100 STX", "Trees:        50", "Plastic:      2 kg", "CO2 absorbed: 2400 lbs/year", "Marine life:  10"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("output missing %q:\n%s", want, out.String())
		}
	}
}

func TestImpactCommand_RejectsInvalidAmount(t *testing.T) {
	for _, arg := range []string{"abc", "0", "20000"} {
		var out bytes.Buffer
		rootCmd.SetOut(&out)
		rootCmd.SetErr(&out)
		rootCmd.SetArgs([]string{"impact", arg})

		if err := rootCmd.Execute(); err == nil {
			t.Errorf("impact %s: expected an error", arg)
		}
	}
	rootCmd.SetArgs(nil)
}
