package sms

import "testing"

func TestNormalizePhone(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"(555) 555-0100", "15555550100"},
		{"5555550100", "15555550100"},
		{"15555550100", "15555550100"},
		{"+1 555 555 0100", "15555550100"},
		{"", ""},
		{"abc", ""},
	}

	for _, tc := range cases {
		if got := NormalizePhone(tc.in); got != tc.want {
			t.Errorf("NormalizePhone(%q) = %q, se esperaba %q", tc.in, got, tc.want)
		}
	}
}

func TestIsValidPhone(t *testing.T) {
	if !IsValidPhone("15555550100") {
		t.Error("un número normalizado de 11 dígitos debe ser válido")
	}
	if IsValidPhone("5555550100") {
		t.Error("sin código de país no es válido")
	}
	if IsValidPhone("") || IsValidPhone("25555550100") {
		t.Error("números vacíos o con otro código de país no son válidos")
	}
}

func TestFirstWord(t *testing.T) {
	if got := FirstWord("  Y claro que si  "); got != "Y" {
		t.Errorf("FirstWord = %q", got)
	}
	if got := FirstWord(""); got != "" {
		t.Errorf("FirstWord de vacío = %q", got)
	}
}

func TestIsYesResponse(t *testing.T) {
	for _, yes := range []string{"Y", "y", "YES", "yes", "si"} {
		if !IsYesResponse(yes) {
			t.Errorf("%q debería contar como sí", yes)
		}
	}
	for _, no := range []string{"N", "no", "", "YEP?"} {
		if IsYesResponse(no) {
			t.Errorf("%q no debería contar como sí", no)
		}
	}
}
