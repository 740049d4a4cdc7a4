package hub

import (
	"errors"
	"testing"
)

func TestDecodeEnvelopeClassification(t *testing.T) {
	cases := []struct {
		name    string
		payload string
		want    envelopeKind
		wantErr bool
	}{
		{
			name:    "broadcast",
			payload: `{"message":"hi all"}`,
			want:    kindBroadcast,
		},
		{
			name:    "private",
			payload: `{"message":"psst","targetEmail":"b@example.com"}`,
			want:    kindPrivate,
		},
		{
			name:    "group",
			payload: `{"message":"hello","groupId":7}`,
			want:    kindGroup,
		},
		{
			name:    "new group control",
			payload: `{"type":"newGroup","members":["b@example.com","c@example.com"]}`,
			want:    kindNewGroup,
		},
		{
			name:    "conflicting target and group",
			payload: `{"message":"x","targetEmail":"b@example.com","groupId":7}`,
			wantErr: true,
		},
		{
			name:    "unknown control type",
			payload: `{"type":"selfDestruct"}`,
			wantErr: true,
		},
		{
			name:    "unparsable payload",
			payload: `{"message":`,
			wantErr: true,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, kind, err := decodeEnvelope([]byte(tc.payload))
			if tc.wantErr {
				if !errors.Is(err, ErrMalformedEnvelope) {
					t.Fatalf("expected ErrMalformedEnvelope, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("decode: %v", err)
			}
			if kind != tc.want {
				t.Fatalf("kind = %d, want %d", kind, tc.want)
			}
		})
	}
}
