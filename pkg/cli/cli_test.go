package cli

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/maxrand/go/pkg/probspec"
)

func TestSpecFromUniform(t *testing.T) {
	a := Args{N: 100, P: 0.5, HasP: true}
	spec, n, err := a.Spec(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if n != 100 {
		t.Fatalf("n = %d", n)
	}
	if _, ok := spec.(probspec.Uniform); !ok {
		t.Fatalf("got %T", spec)
	}
}

func TestSpecFromSequenceInfersN(t *testing.T) {
	a := Args{PS: "0.5, 0.2,0.25"}
	spec, n, err := a.Spec(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if n != 3 {
		t.Fatalf("n = %d", n)
	}
	pe, ok := spec.(probspec.PerExample)
	if !ok {
		t.Fatalf("got %T", spec)
	}
	if pe[1] != 0.2 {
		t.Fatalf("got %v", pe)
	}
}

func TestSpecFromLabels(t *testing.T) {
	a := Args{N: 100, Labels: "2:50,5:50"}
	spec, _, err := a.Spec(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	lc, ok := spec.(probspec.LabelCounts)
	if !ok {
		t.Fatalf("got %T", spec)
	}
	if lc[2] != 50 || lc[5] != 50 {
		t.Fatalf("got %v", lc)
	}
}

func TestSpecFromLabelsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "labels.txt")
	if err := os.WriteFile(path, []byte("2\n2\n5\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	a := Args{LabelsFile: path}
	spec, n, err := a.Spec(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if n != 3 {
		t.Fatalf("n = %d", n)
	}
	ps, err := spec.Probabilities(n)
	if err != nil {
		t.Fatal(err)
	}
	if ps[2] != 0.2 {
		t.Fatalf("got %v", ps)
	}
}

func TestSpecRequiresExactlyOneForm(t *testing.T) {
	_, _, err := Args{N: 10}.Spec(context.Background())
	if !errors.Is(err, probspec.ErrUnrecognized) {
		t.Fatalf("no form: %v", err)
	}
	_, _, err = Args{N: 10, P: 0.5, HasP: true, Labels: "2:10"}.Spec(context.Background())
	if !errors.Is(err, probspec.ErrUnrecognized) {
		t.Fatalf("two forms: %v", err)
	}
}
