package diag

import (
	"testing"

	"github.com/haiman1024/Contractus/internal/source"
)

func TestBagLimit(t *testing.T) {
	bag := NewBag(2)
	for i := 0; i < 3; i++ {
		bag.Add(Diagnostic{Severity: SevError, Code: SynUnexpectedToken})
	}
	if bag.Len() != 2 {
		t.Errorf("Len = %d, want 2", bag.Len())
	}
}

func TestBagHasErrors(t *testing.T) {
	bag := NewBag(10)
	if bag.HasErrors() {
		t.Error("empty bag should not have errors")
	}
	bag.Add(Diagnostic{Severity: SevWarning})
	if bag.HasErrors() {
		t.Error("warning-only bag should not have errors")
	}
	bag.Add(Diagnostic{Severity: SevError, Code: TypeMismatch})
	if !bag.HasErrors() {
		t.Error("bag with an error should report HasErrors")
	}
	if !bag.HasCode(TypeMismatch) {
		t.Error("HasCode(TypeMismatch) = false")
	}
}

func TestBagSortDeterministic(t *testing.T) {
	bag := NewBag(10)
	bag.Add(Diagnostic{Severity: SevError, Code: SynExpectSemicolon, Primary: source.Span{Start: 20, End: 21}})
	bag.Add(Diagnostic{Severity: SevError, Code: SynUnexpectedToken, Primary: source.Span{Start: 5, End: 7}})
	bag.Add(Diagnostic{Severity: SevWarning, Code: UnknownCode, Primary: source.Span{Start: 5, End: 7}})
	bag.Sort()

	items := bag.Items()
	if items[0].Primary.Start != 5 || items[0].Severity != SevError {
		t.Errorf("first item = %+v", items[0])
	}
	if items[1].Severity != SevWarning {
		t.Errorf("second item = %+v", items[1])
	}
	if items[2].Code != SynExpectSemicolon {
		t.Errorf("third item = %+v", items[2])
	}
}

func TestBagReporter(t *testing.T) {
	bag := NewBag(10)
	var r Reporter = BagReporter{Bag: bag}
	ReportError(r, SemaUndefinedVariable, source.Span{Start: 1, End: 2}, "undefined variable `x`")
	if bag.Len() != 1 {
		t.Fatalf("Len = %d, want 1", bag.Len())
	}
	if bag.Items()[0].Code != SemaUndefinedVariable {
		t.Errorf("code = %v", bag.Items()[0].Code)
	}
}

func TestCodeString(t *testing.T) {
	if got := TypeMismatch.String(); got != "CTX4001" {
		t.Errorf("TypeMismatch.String() = %q", got)
	}
	if !GenUndefinedRegister.IsInternal() {
		t.Error("GenUndefinedRegister should be internal")
	}
	if TypeMismatch.IsInternal() {
		t.Error("TypeMismatch should not be internal")
	}
}
