package safety_test

import (
	"reflect"
	"testing"

	"github.com/botfactory/botfactory/engine/internal/safety"
)

func TestApply_Clean(t *testing.T) {
	res := safety.Apply("What time do you open tomorrow?")
	if res.Blocked {
		t.Errorf("Apply() blocked clean text")
	}
	if res.Sanitized != "What time do you open tomorrow?" {
		t.Errorf("Apply() changed clean text: %q", res.Sanitized)
	}
	if len(res.Reasons) != 0 {
		t.Errorf("Apply() reasons = %v, want none", res.Reasons)
	}
}

func TestApply_ProfanityBlocksAndMasks(t *testing.T) {
	res := safety.Apply("this is damn slow")
	if !res.Blocked {
		t.Fatal("Apply() did not block profanity")
	}
	if res.Sanitized != "this is **** slow" {
		t.Errorf("Sanitized = %q, want %q", res.Sanitized, "this is **** slow")
	}
	if !reflect.DeepEqual(res.Reasons, []string{"profanity:damn"}) {
		t.Errorf("Reasons = %v, want [profanity:damn]", res.Reasons)
	}
}

func TestApply_ProfanityCaseInsensitive(t *testing.T) {
	res := safety.Apply("DAMN it")
	if !res.Blocked {
		t.Fatal("Apply() did not block uppercase profanity")
	}
	if res.Sanitized != "**** it" {
		t.Errorf("Sanitized = %q, want equal-length mask", res.Sanitized)
	}
}

func TestApply_WholeWordOnly(t *testing.T) {
	// "pass" and "classic" contain profanity substrings but are clean words.
	res := safety.Apply("a classic pass play")
	if res.Blocked {
		t.Errorf("Apply() blocked on substring match: %q", res.Sanitized)
	}
}

func TestApply_EmailRedactedNotBlocked(t *testing.T) {
	res := safety.Apply("reach me at jane.doe@example.com please")
	if res.Blocked {
		t.Error("Apply() blocked on PII alone")
	}
	if res.Sanitized != "reach me at [email] please" {
		t.Errorf("Sanitized = %q, want [email] placeholder", res.Sanitized)
	}
	if !reflect.DeepEqual(res.Reasons, []string{"pii:email"}) {
		t.Errorf("Reasons = %v, want [pii:email]", res.Reasons)
	}
}

func TestApply_PhoneRedactedNotBlocked(t *testing.T) {
	res := safety.Apply("call 555-123-4567 today")
	if res.Blocked {
		t.Error("Apply() blocked on PII alone")
	}
	if res.Sanitized != "call [phone] today" {
		t.Errorf("Sanitized = %q, want [phone] placeholder", res.Sanitized)
	}
}

func TestApply_ProfanityAndPII(t *testing.T) {
	res := safety.Apply("damn, email me at a@b.co")
	if !res.Blocked {
		t.Fatal("Apply() did not block")
	}
	want := []string{"profanity:damn", "pii:email"}
	if !reflect.DeepEqual(res.Reasons, want) {
		t.Errorf("Reasons = %v, want %v", res.Reasons, want)
	}
}

func TestApply_Idempotent(t *testing.T) {
	inputs := []string{
		"this is damn slow",
		"reach me at jane.doe@example.com or 555-123-4567",
		"clean text with no issues",
	}
	for _, in := range inputs {
		first := safety.Apply(in)
		second := safety.Apply(first.Sanitized)
		if second.Sanitized != first.Sanitized {
			t.Errorf("Apply not idempotent for %q: %q then %q", in, first.Sanitized, second.Sanitized)
		}
		if second.Blocked {
			t.Errorf("Apply(%q) blocked its own output", in)
		}
	}
}
