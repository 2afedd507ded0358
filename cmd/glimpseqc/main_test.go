package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitGlobs(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{name: "empty", input: "", want: nil},
		{name: "single", input: "NA12878", want: []string{"NA12878"}},
		{name: "several", input: "NA12878,NA24385", want: []string{"NA12878", "NA24385"}},
		{name: "globs", input: "HG*,*_rep?", want: []string{"HG*", "*_rep?"}},
		{name: "whitespace and empties", input: " NA12878 , ,NA24385,", want: []string{"NA12878", "NA24385"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, splitGlobs(tt.input))
		})
	}
}
