package extralife_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/extra-life-tools/donation-queue/internal/extralife"
)

func TestTeamDonations(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/teams/67141/donations" {
			t.Errorf("path = %q, want /api/teams/67141/donations", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[
			{"donationID":"D1","displayName":"Alice","amount":10,"message":"glhf","avatarImageURL":"https://img.example/a.gif"},
			{"donationID":"D2","displayName":null,"amount":25.5,"message":null}
		]`))
	}))
	defer srv.Close()

	client := extralife.New(srv.URL, 5*time.Second)
	donations, err := client.TeamDonations(context.Background(), "67141")
	if err != nil {
		t.Fatalf("TeamDonations() error = %v", err)
	}

	if len(donations) != 2 {
		t.Fatalf("len = %d, want 2", len(donations))
	}
	if donations[0].DonationID != "D1" || *donations[0].DisplayName != "Alice" {
		t.Errorf("first donation = %+v", donations[0])
	}
	if donations[1].DisplayName != nil {
		t.Errorf("null displayName decoded as %q, want nil", *donations[1].DisplayName)
	}
	if donations[1].Amount != 25.5 {
		t.Errorf("amount = %v, want 25.5", donations[1].Amount)
	}
}

func TestTeamDonations_Non200(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "team not found", http.StatusNotFound)
	}))
	defer srv.Close()

	client := extralife.New(srv.URL, 5*time.Second)
	if _, err := client.TeamDonations(context.Background(), "0"); err == nil {
		t.Fatal("TeamDonations() expected error for 404 response")
	}
}

func TestTeamDonations_MalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"not":"a list"}`))
	}))
	defer srv.Close()

	client := extralife.New(srv.URL, 5*time.Second)
	if _, err := client.TeamDonations(context.Background(), "67141"); err == nil {
		t.Fatal("TeamDonations() expected error for malformed body")
	}
}

func TestTeamDonations_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	client := extralife.New(srv.URL, 20*time.Millisecond)
	if _, err := client.TeamDonations(context.Background(), "67141"); err == nil {
		t.Fatal("TeamDonations() expected timeout error")
	}
}
