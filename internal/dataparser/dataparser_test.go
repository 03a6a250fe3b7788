package dataparser

import (
	"testing"

	"slurmrestd/internal/envelope"
	"slurmrestd/internal/tree"
)

type fakeParser struct{ name string }

func (f *fakeParser) Name() string { return f.name }
func (f *fakeParser) Parse(tag TypeTag, out any, node *tree.Value, parentPath string, env *envelope.Envelope) envelope.Code {
	return envelope.CodeNone
}
func (f *fakeParser) Dump(tag TypeTag, record any, env *envelope.Envelope) *tree.Value {
	return tree.NewDict()
}
func (f *fakeParser) Assign(attribute string, value any) {}
func (f *fakeParser) Specify(specTree *tree.Value)        {}

func TestRegistryLookupRoundTrip(t *testing.T) {
	r := &registry{parsers: make(map[string]Parser)}
	p := &fakeParser{name: "v0.0.39"}
	r.Register(p)

	got, err := r.Lookup("v0.0.39")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if got.Name() != "v0.0.39" {
		t.Fatalf("expected v0.0.39, got %s", got.Name())
	}
}

func TestRegistryLookupUnknownFails(t *testing.T) {
	r := &registry{parsers: make(map[string]Parser)}
	if _, err := r.Lookup("v9.9.9"); err == nil {
		t.Fatalf("expected error for unknown revision")
	}
}

func TestAllocFreeLifecycle(t *testing.T) {
	type jobDesc struct{ Name string }
	var freed []any
	RegisterLifecycle(TypeTag("TEST_JOB_DESC_MSG"), func() any {
		return &jobDesc{}
	}, func(p any) {
		freed = append(freed, p)
	})

	obj, err := AllocParserObj(TypeTag("TEST_JOB_DESC_MSG"))
	if err != nil {
		t.Fatalf("AllocParserObj: %v", err)
	}
	jd, ok := obj.(*jobDesc)
	if !ok {
		t.Fatalf("expected *jobDesc, got %T", obj)
	}
	jd.Name = "probe"

	FreeParserObj(TypeTag("TEST_JOB_DESC_MSG"), obj)
	if len(freed) != 1 || freed[0].(*jobDesc).Name != "probe" {
		t.Fatalf("expected free to receive the allocated object, got %v", freed)
	}
}

func TestAllocUnregisteredTagErrors(t *testing.T) {
	if _, err := AllocParserObj(TypeTag("NEVER_REGISTERED_TAG")); err == nil {
		t.Fatalf("expected error for unregistered tag")
	}
}
