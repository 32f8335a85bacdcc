package main

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"pkt.systems/peek/internal/appconfig"
)

func TestOpenerCommand(t *testing.T) {
	url := "http://127.0.0.1:1234/?theme=dark"
	cases := map[string][]string{
		"linux":   {"xdg-open", url},
		"freebsd": {"xdg-open", url},
		"darwin":  {"open", url},
		"windows": {"rundll32", "url.dll,FileProtocolHandler", url},
	}
	for goos, want := range cases {
		if diff := cmp.Diff(want, openerCommand(goos, url)); diff != "" {
			t.Fatalf("%s: opener mismatch (-want +got):\n%s", goos, diff)
		}
	}
}

func TestLaunchCommand(t *testing.T) {
	url := "http://127.0.0.1:1234/?theme=light"
	got, err := launchCommand(appconfig.AppConfig{Mode: appconfig.AppNone}, url, "light")
	if err != nil || got != nil {
		t.Fatalf("none mode = %v, %v", got, err)
	}
	got, err = launchCommand(appconfig.AppConfig{Mode: appconfig.AppCommand, Command: []string{"viewer", "--frameless"}}, url, "light")
	if err != nil {
		t.Fatalf("command mode: %v", err)
	}
	if diff := cmp.Diff([]string{"viewer", "--frameless", url, "light"}, got); diff != "" {
		t.Fatalf("command argv mismatch (-want +got):\n%s", diff)
	}
	if _, err := launchCommand(appconfig.AppConfig{Mode: appconfig.AppCommand}, url, ""); err == nil {
		t.Fatalf("expected missing command error")
	}
	if _, err := launchCommand(appconfig.AppConfig{Mode: appconfig.AppBrowser}, "", ""); err == nil {
		t.Fatalf("expected missing url error")
	}
	got, err = launchCommand(appconfig.AppConfig{Mode: appconfig.AppBrowser}, url, "")
	if err != nil || len(got) == 0 || got[len(got)-1] != url {
		t.Fatalf("browser mode = %v, %v", got, err)
	}
}
