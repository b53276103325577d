package domain

// Article is a single text file prepared for draft submission.
// Created by the folder source, consumed once by the uploader, never mutated.
type Article struct {
	Title   string
	Content string
}

// Draft carries everything the draft endpoint needs beyond the token.
type Draft struct {
	Title              string
	Content            string
	Digest             string
	IsMarkdown         bool
	ShowCoverPic       bool
	NeedOpenComment    bool
	OnlyFansCanComment bool
}

// UploadStatus enumerates per-article batch outcomes.
type UploadStatus string

const (
	StatusSuccess UploadStatus = "success"
	StatusFailure UploadStatus = "failure"
	StatusSkipped UploadStatus = "skipped"
)

// UploadOutcome records how a single article fared; it is converted into a
// log entry (and optionally a history row) and then dropped.
type UploadOutcome struct {
	Title   string
	Status  UploadStatus
	MediaID string
	Detail  string
}
