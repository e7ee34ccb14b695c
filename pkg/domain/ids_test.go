package domain_test

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"wastepolicy/pkg/domain"
)

func TestIDsEncodeAsUUIDStrings(t *testing.T) {
	t.Parallel()

	raw := uuid.MustParse("6f1c2d9e-1b7a-4c55-9e43-3a9d1f0b7c21")
	policyID := domain.PolicyID(raw)
	res := domain.RunResult{PolicyID: &policyID}

	data, err := json.Marshal(res)
	require.NoError(t, err)
	require.JSONEq(t, `{"policyId":"6f1c2d9e-1b7a-4c55-9e43-3a9d1f0b7c21"}`, string(data))

	var back domain.RunResult
	require.NoError(t, json.Unmarshal(data, &back))
	require.Equal(t, policyID, *back.PolicyID)

	runID, err := domain.ParseRunID(raw.String())
	require.NoError(t, err)
	require.Equal(t, raw.String(), runID.String())

	_, err = domain.ParsePolicyID("nope")
	require.Error(t, err)

	userID, err := domain.ParseUserID(raw.String())
	require.NoError(t, err)
	require.Equal(t, domain.UserID(raw), userID)
}
