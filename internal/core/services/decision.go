package services

import "github.com/coursekit/coursekit-cli/internal/core/domain"

// Decide picks the sync action for one repository from its observed local
// state and the server-reported remote hash. An empty localHash means the
// local hash is unknown or unreadable.
//
// Decide is total and side-effect free: it never touches the filesystem
// or the network, so it is testable without a transport.
func Decide(localExists bool, localHash, remoteHash string) domain.SyncAction {
	if !localExists {
		return domain.ActionClone
	}
	if localHash != "" && localHash == remoteHash {
		return domain.ActionNone
	}
	return domain.ActionPull
}
