package common

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"
	"github.com/aws/aws-sdk-go-v2/service/sts"
	"github.com/aws/smithy-go"

	"github.com/pankaj-dahiya-devops/cloud-dome/internal/models"
)

// ── fakes ─────────────────────────────────────────────────────────────────────

type fakeSTS struct {
	account string
	err     error
}

func (f *fakeSTS) GetCallerIdentity(context.Context, *sts.GetCallerIdentityInput, ...func(*sts.Options)) (*sts.GetCallerIdentityOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &sts.GetCallerIdentityOutput{Account: aws.String(f.account)}, nil
}

type fakeRegions struct {
	regions []string
	err     error
}

func (f *fakeRegions) DescribeRegions(context.Context, *ec2.DescribeRegionsInput, ...func(*ec2.Options)) (*ec2.DescribeRegionsOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := &ec2.DescribeRegionsOutput{}
	for _, r := range f.regions {
		out.Regions = append(out.Regions, ec2types.Region{RegionName: aws.String(r)})
	}
	return out, nil
}

func fakeFactory(s *fakeSTS, r *fakeRegions) ClientFactory {
	return func(aws.Config) *ClientSet { return &ClientSet{STS: s, EC2: r} }
}

var testCreds = models.Credentials{AccessKeyID: "AKIAEXAMPLE", SecretAccessKey: "secret"}

// ── tests ─────────────────────────────────────────────────────────────────────

func TestLoadStatic_ResolvesAccount(t *testing.T) {
	p := NewDefaultAWSClientProviderWithFactory(fakeFactory(&fakeSTS{account: "123456789012"}, &fakeRegions{}))

	pc, err := p.LoadStatic(context.Background(), testCreds)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if pc.AccountID != "123456789012" {
		t.Errorf("AccountID = %q; want 123456789012", pc.AccountID)
	}
	if pc.Region != HomeRegion {
		t.Errorf("Region = %q; want %q", pc.Region, HomeRegion)
	}
	if pc.ProfileName != "static" {
		t.Errorf("ProfileName = %q; want static", pc.ProfileName)
	}
}

func TestLoadStatic_RejectedKeysAreInvalidCredentials(t *testing.T) {
	rejected := &smithy.GenericAPIError{Code: "InvalidClientTokenId", Message: "bad token"}
	p := NewDefaultAWSClientProviderWithFactory(fakeFactory(&fakeSTS{err: rejected}, &fakeRegions{}))

	_, err := p.LoadStatic(context.Background(), testCreds)
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("err = %v; want ErrInvalidCredentials", err)
	}
}

func TestLoadStatic_OtherFaultsAreNotCredentialErrors(t *testing.T) {
	throttled := &smithy.GenericAPIError{Code: "Throttling", Message: "slow down"}
	p := NewDefaultAWSClientProviderWithFactory(fakeFactory(&fakeSTS{err: throttled}, &fakeRegions{}))

	_, err := p.LoadStatic(context.Background(), testCreds)
	if err == nil {
		t.Fatal("expected an error")
	}
	if errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("throttling must not be reported as invalid credentials: %v", err)
	}
}

func TestLoadStatic_MissingKeyMaterial(t *testing.T) {
	p := NewDefaultAWSClientProviderWithFactory(fakeFactory(&fakeSTS{account: "1"}, &fakeRegions{}))

	_, err := p.LoadStatic(context.Background(), models.Credentials{AccessKeyID: "AKIA"})
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("err = %v; want ErrInvalidCredentials", err)
	}
}

func TestGetActiveRegions(t *testing.T) {
	regions := &fakeRegions{regions: []string{"us-east-1", "eu-west-1"}}
	p := NewDefaultAWSClientProviderWithFactory(fakeFactory(&fakeSTS{account: "1"}, regions))

	pc, err := p.LoadStatic(context.Background(), testCreds)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, err := p.GetActiveRegions(context.Background(), pc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 || got[0] != "us-east-1" || got[1] != "eu-west-1" {
		t.Errorf("regions = %v", got)
	}

	regional := p.ConfigForRegion(pc, "eu-west-1")
	if regional.Region != "eu-west-1" {
		t.Errorf("regional Region = %q", regional.Region)
	}
	if pc.Config.Region != HomeRegion {
		t.Errorf("ConfigForRegion mutated the home config: %q", pc.Config.Region)
	}
}

func TestSameAccount(t *testing.T) {
	cases := []struct {
		a, b string
		want bool
	}{
		{"123456789012", "123456789012", true},
		{"1234-5678-9012", "123456789012", true},
		{"1234 5678 9012", "1234-5678-9012", true},
		{"123456789012", "210987654321", false},
	}
	for _, tc := range cases {
		if got := SameAccount(tc.a, tc.b); got != tc.want {
			t.Errorf("SameAccount(%q, %q) = %v; want %v", tc.a, tc.b, got, tc.want)
		}
	}
}

func TestProfileNamesIn(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "credentials"), "[default]\nkey=1\n[staging]\n")
	writeFile(t, filepath.Join(dir, "config"), "[default]\n[profile prod]\n[profile staging]\n")

	got, err := profileNamesIn(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"default", "staging", "prod"}
	if len(got) != len(want) {
		t.Fatalf("profiles = %v; want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("profiles[%d] = %q; want %q", i, got[i], want[i])
		}
	}
}

func TestProfileNamesIn_MissingFiles(t *testing.T) {
	got, err := profileNamesIn(t.TempDir())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("profiles = %v; want none", got)
	}
}

// ── helpers ───────────────────────────────────────────────────────────────────

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
}
