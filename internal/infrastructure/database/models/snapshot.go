package models

import "time"

// PaperSnapshot is the persisted read-model of one normalized paper
// record. Snapshots are refreshed after every successful chain read and
// served when the provider is unreachable; they are never authoritative.
type PaperSnapshot struct {
	TokenID     int64  `gorm:"primarykey;autoIncrement:false"`
	Title       string `gorm:"size:512"`
	Author      string `gorm:"size:256"`
	Affiliation string `gorm:"size:256"`
	ContentHash string `gorm:"size:128"`
	Status      int    `gorm:"index"`
	MintedAt    time.Time
	Owner       string `gorm:"size:64;index"`
	UpdatedAt   time.Time
}

// ProposalSnapshot is the persisted read-model of one governance
// proposal.
type ProposalSnapshot struct {
	ID            int64 `gorm:"primarykey;autoIncrement:false"`
	Title         string
	Description   string
	Type          int
	Status        int `gorm:"index"`
	VotesFor      int64
	VotesAgainst  int64
	TotalVotes    int64
	Proposer      string `gorm:"size:64"`
	StartTime     time.Time
	EndTime       time.Time
	RequiredVotes int64
	UpdatedAt     time.Time
}
