package frame

import (
	"testing"

	"github.com/zeebo/xxh3"
)

func TestFrameWriteToHash(t *testing.T) {
	tests := []struct {
		name string
		a    Frame
		b    Frame
		same bool
	}{
		{
			name: "identical frames fingerprint equal",
			a:    Frame{Function: "main.run", File: "main.go", Line: 42},
			b:    Frame{Function: "main.run", File: "main.go", Line: 42},
			same: true,
		},
		{
			name: "line is part of the fingerprint",
			a:    Frame{Function: "main.run", File: "main.go", Line: 42},
			b:    Frame{Function: "main.run", File: "main.go", Line: 43},
			same: false,
		},
		{
			name: "field boundaries cannot shift",
			a:    Frame{Function: "ab", File: "c"},
			b:    Frame{Function: "a", File: "bc"},
			same: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ha, hb := xxh3.New(), xxh3.New()
			tt.a.WriteToHash(ha)
			tt.b.WriteToHash(hb)
			if same := ha.Sum64() == hb.Sum64(); same != tt.same {
				t.Fatalf("fingerprint equality: got %v, want %v", same, tt.same)
			}
		})
	}
}

func TestLocationMarshalText(t *testing.T) {
	l := Location{Function: "main.run", File: "cmd/app/main.go"}
	b, err := l.MarshalText()
	if err != nil {
		t.Fatal(err)
	}
	if want := "cmd/app/main.go:main.run"; string(b) != want {
		t.Fatalf("got %q, want %q", string(b), want)
	}
}
