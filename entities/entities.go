package entities

// All lists every table migrated by the service.
func All() []any {
	return []any{
		&Video{},
		&User{},
		&Admin{},
		&Playlist{},
		&PlaylistItem{},
		&WatchEvent{},
		&Feedback{},
		&Setting{},
		&Job{},
	}
}
