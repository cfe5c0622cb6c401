// Package models holds the persistence schema and the request/response shapes of the API.
package models

import "gorm.io/gorm"

// All lists every table in migration order.
func All() []interface{} {
	return []interface{}{
		&User{},
		&Post{},
		&PostLike{},
		&PostComment{},
		&Story{},
		&GooningPartner{},
		&ChatRoom{},
		&ChatRoomMember{},
		&Message{},
		&GlobalMessage{},
		&Notification{},
	}
}

func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(All()...)
}
