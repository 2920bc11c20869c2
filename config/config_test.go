package config

import (
	"context"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	ssmtypes "github.com/aws/aws-sdk-go-v2/service/ssm/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewReadsEnvironment(t *testing.T) {
	t.Setenv("PLANNER_TEST_KEY", "a=b")

	cfg := New()
	assert.Equal(t, "a=b", cfg["PLANNER_TEST_KEY"])
}

func TestTypedGetters(t *testing.T) {
	cfg := map[string]string{
		"PORT":        " 9090 ",
		"BAD_INT":     "nine",
		"SECURE":      "true",
		"TTL":         "2",
		"EMPTY":       "",
		"REPLICAS":    "a, ,b,",
		"BAD_BOOLEAN": "perhaps",
	}

	assert.Equal(t, 9090, GetInt(cfg, "PORT", 8080))
	assert.Equal(t, 8080, GetInt(cfg, "BAD_INT", 8080))
	assert.Equal(t, 8080, GetInt(nil, "PORT", 8080))
	assert.True(t, GetBool(cfg, "SECURE", false))
	assert.False(t, GetBool(cfg, "BAD_BOOLEAN", false))
	assert.Equal(t, 2*time.Hour, GetDuration(cfg, "TTL", time.Hour, 168))
	assert.Equal(t, 168*time.Hour, GetDuration(cfg, "MISSING", time.Hour, 168))
	assert.Equal(t, "fallback", GetString(cfg, "EMPTY", "fallback"))
	assert.Equal(t, []string{"a", "b"}, GetList(cfg, "REPLICAS"))
	assert.Nil(t, GetList(cfg, "MISSING"))
}

type fakeParameterStore struct {
	pages []*ssm.GetParametersByPathOutput
	calls int
}

func (f *fakeParameterStore) GetParametersByPath(_ context.Context, in *ssm.GetParametersByPathInput, _ ...func(*ssm.Options)) (*ssm.GetParametersByPathOutput, error) {
	page := f.pages[f.calls]
	f.calls++
	return page, nil
}

func TestMergeParametersKeepsEnvironmentValues(t *testing.T) {
	store := &fakeParameterStore{pages: []*ssm.GetParametersByPathOutput{
		{
			Parameters: []ssmtypes.Parameter{
				{Name: aws.String("/planner/prod/session_secret"), Value: aws.String("from-ssm")},
			},
			NextToken: aws.String("next"),
		},
		{
			Parameters: []ssmtypes.Parameter{
				{Name: aws.String("/planner/prod/PORT"), Value: aws.String("1234")},
			},
		},
	}}
	cfg := map[string]string{"PORT": "8080"}

	require.NoError(t, MergeParameters(context.Background(), store, "/planner/prod", cfg))

	assert.Equal(t, 2, store.calls)
	assert.Equal(t, "from-ssm", cfg["SESSION_SECRET"])
	assert.Equal(t, "8080", cfg["PORT"])
}
