package domain

import "errors"

var (
	ErrPollNotFound        = errors.New("poll not found")
	ErrInvalidOption       = errors.New("invalid option for this poll")
	ErrVoteConflict        = errors.New("conflicting vote for this poll")
	ErrRankingNotFound     = errors.New("ranking not found")
	ErrMovieNotFound       = errors.New("movie not found")
	ErrRankingItemNotFound = errors.New("ranking item not found")
)
