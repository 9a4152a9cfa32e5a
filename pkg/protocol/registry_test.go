package protocol

import (
	"go/constant"
	"go/types"
	"strings"
	"testing"

	"golang.org/x/tools/go/packages"
)

func TestRegistrationsUnique(t *testing.T) {
	regs := Registrations()
	if len(regs) == 0 {
		t.Fatal("no registrations")
	}

	tags := make(map[Tag]string)
	names := make(map[string]Tag)
	for i, r := range regs {
		if prev, dup := tags[r.Tag]; dup {
			t.Errorf("tag %d shared by %s and %s", r.Tag, prev, r.Name)
		}
		if prev, dup := names[r.Name]; dup {
			t.Errorf("name %s registered under tags %d and %d", r.Name, prev, r.Tag)
		}
		tags[r.Tag] = r.Name
		names[r.Name] = r.Tag

		if i > 0 && regs[i-1].Tag >= r.Tag {
			t.Errorf("Registrations() not sorted at %d", i)
		}
	}
}

func TestRegistrationsConstructVariant(t *testing.T) {
	for _, r := range Registrations() {
		m := r.New()
		if m.Tag() != r.Tag {
			t.Errorf("%s: New().Tag() = %d, want %d", r.Name, m.Tag(), r.Tag)
		}
		if got, ok := LookupName(r.Name); !ok || got.Tag != r.Tag {
			t.Errorf("LookupName(%s) = %v, %v", r.Name, got.Tag, ok)
		}
	}
	if _, ok := LookupName("NoSuchMessage"); ok {
		t.Error("LookupName(NoSuchMessage) found a registration")
	}
}

func TestRegisterDuplicatePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("registering GameOver twice did not panic")
		}
	}()
	register[GameOver]()
}

// TestEveryMessageTypeIsRegistered inspects the package source so that a new
// variant that was never added to the registry fails the build's tests.
func TestEveryMessageTypeIsRegistered(t *testing.T) {
	if testing.Short() {
		t.Skip("loads package sources")
	}

	cfg := &packages.Config{
		Mode: packages.NeedName | packages.NeedTypes,
		Dir:  ".",
	}
	pkgs, err := packages.Load(cfg, ".")
	if err != nil {
		t.Fatalf("load package: %v", err)
	}
	if packages.PrintErrors(pkgs) > 0 {
		t.Fatal("package load errors")
	}
	if len(pkgs) != 1 {
		t.Fatalf("loaded %d packages, want 1", len(pkgs))
	}
	scope := pkgs[0].Types.Scope()

	msgObj := scope.Lookup("Message")
	if msgObj == nil {
		t.Fatal("Message interface not found")
	}
	iface := msgObj.Type().Underlying().(*types.Interface)
	tagType := scope.Lookup("Tag").Type()

	implementations := 0
	for _, name := range scope.Names() {
		switch obj := scope.Lookup(name).(type) {
		case *types.TypeName:
			if _, isIface := obj.Type().Underlying().(*types.Interface); isIface {
				continue
			}
			if !types.Implements(types.NewPointer(obj.Type()), iface) {
				continue
			}
			implementations++
			r, ok := LookupName(name)
			if !ok {
				t.Errorf("%s implements Message but is not registered", name)
				continue
			}
			if r.Name != name {
				t.Errorf("%s registered as %s", name, r.Name)
			}

		case *types.Const:
			if !types.Identical(obj.Type(), tagType) || !strings.HasPrefix(name, "Tag") {
				continue
			}
			v, _ := constant.Uint64Val(obj.Val())
			r, ok := Lookup(Tag(v))
			if !ok {
				t.Errorf("%s = %d has no registered variant", name, v)
				continue
			}
			if want := strings.TrimPrefix(name, "Tag"); r.Name != want {
				t.Errorf("%s = %d is registered to %s, want %s", name, v, r.Name, want)
			}
		}
	}

	if implementations != len(Registrations()) {
		t.Errorf("found %d Message implementations, %d registrations", implementations, len(Registrations()))
	}
}
