package util

import (
	"strings"
	"testing"
)

func TestReadConfEnvOverrides(t *testing.T) {
	t.Setenv("MIMUS_SSLDOMAIN", "conf.example")
	t.Setenv("MIMUS_HTTPPORT", "8888")
	t.Setenv("MIMUS_NOPROXY", "true")
	t.Setenv("MIMUS_POSTS_PER_DAY", "12")

	conf, err := ReadConf()
	if err != nil {
		t.Fatal(err)
	}

	if conf.Conf.SslDomain != "conf.example" {
		t.Errorf("SslDomain = %q", conf.Conf.SslDomain)
	}
	if conf.Conf.HttpPort != 8888 {
		t.Errorf("HttpPort = %d", conf.Conf.HttpPort)
	}
	if !conf.Conf.NoProxy {
		t.Error("NoProxy override not applied")
	}
	if conf.Conf.PostsPerDay != 12 {
		t.Errorf("PostsPerDay = %d", conf.Conf.PostsPerDay)
	}
}

func TestBaseURL(t *testing.T) {
	conf := &AppConfig{}
	conf.Conf.SslDomain = "social.example"
	if got := conf.BaseURL(); got != "https://social.example" {
		t.Errorf("BaseURL = %q", got)
	}
}

func TestGetNameAndVersion(t *testing.T) {
	got := GetNameAndVersion()
	if !strings.HasPrefix(got, Name+" / ") {
		t.Errorf("GetNameAndVersion = %q", got)
	}
	if strings.TrimSpace(GetVersion()) == "" {
		t.Error("embedded version is empty")
	}
}

func TestRandomString(t *testing.T) {
	a := RandomString(10)
	b := RandomString(10)
	if len(a) != 10 || len(b) != 10 {
		t.Errorf("lengths = %d / %d", len(a), len(b))
	}
	if a == b {
		t.Error("two draws came out identical")
	}
}

func TestPkToHashStable(t *testing.T) {
	if PkToHash("key") != PkToHash("key") {
		t.Error("hash is not stable")
	}
	if PkToHash("key") == PkToHash("other") {
		t.Error("distinct inputs collide")
	}
	if len(PkToHash("key")) != 64 {
		t.Errorf("hash length = %d", len(PkToHash("key")))
	}
}
