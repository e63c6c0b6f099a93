package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEditedFlagUnmarshal(t *testing.T) {
	var s Submission

	require.NoError(t, json.Unmarshal([]byte(`{"id":"a","edited":false}`), &s))
	require.False(t, s.Edited.Truthy())

	require.NoError(t, json.Unmarshal([]byte(`{"id":"a","edited":1672531200.0}`), &s))
	require.True(t, s.Edited.Truthy())

	require.NoError(t, json.Unmarshal([]byte(`{"id":"a","edited":true}`), &s))
	require.True(t, s.Edited.Truthy())

	require.Error(t, json.Unmarshal([]byte(`{"id":"a","edited":"nope"}`), &s))
}

func TestCommentTopLevel(t *testing.T) {
	require.True(t, Comment{ParentID: "t3_abc"}.TopLevel())
	require.False(t, Comment{ParentID: "t1_def"}.TopLevel())
}

func TestProfileName(t *testing.T) {
	require.Equal(t, "u_spez", ProfileName("spez"))
}

func TestEventFingerprint(t *testing.T) {
	created := Event{ItemID: "s1", Transition: TransitionCreated, Body: "hello", Author: "bob"}

	require.Equal(t, created.Fingerprint(), created.Fingerprint(), "fingerprint is stable")

	edited := created
	edited.Transition = TransitionEdited
	require.NotEqual(t, created.Fingerprint(), edited.Fingerprint(),
		"different transitions of one item are distinct events")

	reworded := created
	reworded.Body = "goodbye"
	require.NotEqual(t, created.Fingerprint(), reworded.Fingerprint())
}
