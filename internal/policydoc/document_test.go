package policydoc

import (
	"errors"
	"net/url"
	"testing"
)

func TestParse_StringOrListFields(t *testing.T) {
	raw := `{
		"Version": "2012-10-17",
		"Statement": {
			"Effect": "Allow",
			"Principal": "*",
			"Action": "s3:GetObject",
			"Resource": ["arn:aws:s3:::b/*", "*"]
		}
	}`
	doc, err := Parse(raw)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(doc.Statement) != 1 {
		t.Fatalf("statements: got %d; want 1", len(doc.Statement))
	}
	st := doc.Statement[0]
	if !st.PublicPrincipal() {
		t.Error("principal \"*\" should be public")
	}
	if len(st.Action) != 1 || st.Action[0] != "s3:GetObject" {
		t.Errorf("action: got %v", st.Action)
	}
	if !st.WildcardResource() {
		t.Error("resource list containing \"*\" should be a wildcard")
	}
}

func TestParse_URLEncoded(t *testing.T) {
	plain := `{"Version":"2012-10-17","Statement":[{"Effect":"Allow","Action":"*","Resource":"*"}]}`
	doc, err := Parse(url.QueryEscape(plain))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if !doc.AllowsWildcardResource() {
		t.Error("decoded document should allow a wildcard resource")
	}
}

func TestParse_Empty(t *testing.T) {
	if _, err := Parse("   "); !errors.Is(err, ErrEmptyDocument) {
		t.Errorf("err: got %v; want ErrEmptyDocument", err)
	}
}

func TestParse_Malformed(t *testing.T) {
	if _, err := Parse(`{"Statement": [{"Effect": 1}]}`); err == nil {
		t.Error("expected an error for a non-string Effect")
	}
}

func TestPrincipal_AWSWildcard(t *testing.T) {
	doc, err := Parse(`{"Statement":[{"Effect":"Allow","Principal":{"AWS":["arn:aws:iam::1:root","*"]},"Action":"sqs:*"}]}`)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if !doc.PubliclyAccessible() {
		t.Error("{\"AWS\": [..., \"*\"]} without condition should be public")
	}
}

func TestPubliclyAccessible_ConditionRestricts(t *testing.T) {
	doc, err := Parse(`{"Statement":[{"Effect":"Allow","Principal":"*","Action":"sns:Publish",
		"Condition":{"StringEquals":{"aws:SourceOwner":"123456789012"}}}]}`)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if doc.PubliclyAccessible() {
		t.Error("a conditioned statement must not count as public")
	}
}

func TestDeniesInsecureTransport(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want bool
	}{
		{
			name: "quoted false",
			raw:  `{"Statement":[{"Effect":"Deny","Principal":"*","Action":"s3:*","Condition":{"Bool":{"aws:SecureTransport":"false"}}}]}`,
			want: true,
		},
		{
			name: "bare boolean and mixed case key",
			raw:  `{"Statement":[{"Effect":"Deny","Principal":"*","Action":"s3:*","Condition":{"bool":{"AWS:SecureTransport":false}}}]}`,
			want: true,
		},
		{
			name: "allow with the same condition",
			raw:  `{"Statement":[{"Effect":"Allow","Principal":"*","Action":"s3:*","Condition":{"Bool":{"aws:SecureTransport":"false"}}}]}`,
			want: false,
		},
		{
			name: "no condition",
			raw:  `{"Statement":[{"Effect":"Deny","Principal":"*","Action":"s3:DeleteBucket"}]}`,
			want: false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := Parse(tt.raw)
			if err != nil {
				t.Fatalf("Parse: %v", err)
			}
			if got := doc.DeniesInsecureTransport(); got != tt.want {
				t.Errorf("got %v; want %v", got, tt.want)
			}
		})
	}
}

func TestAllowsUnconditionally(t *testing.T) {
	doc, err := Parse(`{"Statement":[{"Effect":"Allow","Principal":{"Service":"s3.amazonaws.com"},"Action":"lambda:*","Resource":"*"}]}`)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if !doc.AllowsUnconditionally("lambda:InvokeFunction") {
		t.Error("lambda:* on * should cover lambda:InvokeFunction")
	}
	if doc.AllowsUnconditionally("s3:GetObject") {
		t.Error("lambda:* must not cover s3 actions")
	}
}

func TestNilDocument(t *testing.T) {
	var d *Document
	if d.PubliclyAccessible() || d.DeniesInsecureTransport() || d.AllowsWildcardResource() {
		t.Error("nil document predicates must all be false")
	}
}
