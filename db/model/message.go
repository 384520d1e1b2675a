package model

type Message struct {
	Base
	Content    string `gorm:"size:1000;not null" json:"content"`
	SenderID   uint   `gorm:"index" json:"sender_id"`
	ReceiverID uint   `gorm:"index" json:"receiver_id"`
	Sender     *User  `gorm:"foreignKey:SenderID" json:"sender,omitempty"`
	Receiver   *User  `gorm:"foreignKey:ReceiverID" json:"receiver,omitempty"`
}
