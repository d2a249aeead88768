package main

import attachcount "caseguard-backend"

type countRequest struct {
	CaseID string `json:"caseId"`
	Kind   string `json:"kind"`
}

type testConnectionRequest struct {
	Connection *attachcount.ConnectionConfig `json:"connection"`
}
