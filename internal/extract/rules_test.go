package extract

import "testing"

func TestExtractAmount(t *testing.T) {
	tests := []struct {
		name         string
		text         string
		wantValue    string
		wantCurrency string
		wantInferred bool
		wantOK       bool
	}{
		{
			name:         "phrase with currency code",
			text:         "Acme Corp has sent you 6,600 PHP",
			wantValue:    "6600",
			wantCurrency: "PHP",
			wantOK:       true,
		},
		{
			name:         "phrase with decimal amount",
			text:         "Globex Inc has sent you 1,234.56 USD via Wise",
			wantValue:    "1234.56",
			wantCurrency: "USD",
			wantOK:       true,
		},
		{
			name:         "phrase without currency code defaults",
			text:         "Initech has sent you 500",
			wantValue:    "500",
			wantCurrency: "PHP",
			wantInferred: true,
			wantOK:       true,
		},
		{
			name:         "currency code before digits",
			text:         "You received PHP 2,500.00 in your account",
			wantValue:    "2500.00",
			wantCurrency: "PHP",
			wantOK:       true,
		},
		{
			name:         "symbol without code defaults",
			text:         "John paid you $100.50 today",
			wantValue:    "100.50",
			wantCurrency: "PHP",
			wantInferred: true,
			wantOK:       true,
		},
		{
			name:         "symbol with code elsewhere",
			text:         "John paid you $100.50 USD today",
			wantValue:    "100.50",
			wantCurrency: "USD",
			wantOK:       true,
		},
		{
			name:         "number then code catch-all",
			text:         "A transfer of 1,250.75 EUR arrived",
			wantValue:    "1250.75",
			wantCurrency: "EUR",
			wantOK:       true,
		},
		{
			name:         "lowercase currency code",
			text:         "Acme Corp has sent you 75 gbp",
			wantValue:    "75",
			wantCurrency: "GBP",
			wantOK:       true,
		},
		{
			name:   "no recognizable amount",
			text:   "Your statement is ready to view",
			wantOK: false,
		},
		{
			name:   "empty text",
			text:   "",
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			amt, ok := ExtractAmount(tt.text, "PHP")
			if ok != tt.wantOK {
				t.Fatalf("ExtractAmount(%q) ok = %v, want %v", tt.text, ok, tt.wantOK)
			}
			if !ok {
				return
			}
			if amt.Value != tt.wantValue {
				t.Errorf("value = %q, want %q", amt.Value, tt.wantValue)
			}
			if amt.Currency != tt.wantCurrency {
				t.Errorf("currency = %q, want %q", amt.Currency, tt.wantCurrency)
			}
			if amt.Inferred != tt.wantInferred {
				t.Errorf("inferred = %v, want %v", amt.Inferred, tt.wantInferred)
			}
		})
	}
}

func TestExtractAmount_DefaultCurrencyConfigurable(t *testing.T) {
	amt, ok := ExtractAmount("Initech has sent you 500", "USD")
	if !ok {
		t.Fatal("Expected a match")
	}
	if amt.Currency != "USD" || !amt.Inferred {
		t.Errorf("Expected inferred USD from configured default, got %+v", amt)
	}
}

func TestExtractSender(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{
			name: "greeting anchored company capture",
			text: "Hello Juan, Acme Corp has sent you 6,600 PHP",
			want: "Acme Corp",
		},
		{
			name: "leading company name",
			text: "Acme Corp has sent you 6,600 PHP",
			want: "Acme Corp",
		},
		{
			name: "from clause",
			text: "You received a transfer from Maria Santos sent via Remitly",
			want: "Maria Santos",
		},
		{
			name: "wants to pay",
			text: "Globex Ltd wants to pay you",
			want: "Globex Ltd",
		},
		{
			name: "got paid by",
			text: "You got paid by Jane Doe",
			want: "Jane Doe",
		},
		{
			name: "trailing punctuation stripped",
			text: "You got paid by Jane Doe.",
			want: "Jane Doe",
		},
		{
			name: "too short falls through to sentinel",
			text: "Hi there, nothing to see",
			want: "Unknown Sender",
		},
		{
			name: "empty text",
			text: "",
			want: "Unknown Sender",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractSender(tt.text); got != tt.want {
				t.Errorf("ExtractSender(%q) = %q, want %q", tt.text, got, tt.want)
			}
		})
	}
}
