package dto

type CreateGroupRequest struct {
	Name    string   `json:"name"`
	Members []string `json:"members"`
}

type GroupResponse struct {
	GroupID int64  `json:"id"`
	Name    string `json:"name"`
}

type CreateGroupResponse struct {
	Message string `json:"message"`
	GroupID int64  `json:"groupId"`
	Name    string `json:"name"`
}

type GroupMembersResponse struct {
	GroupID int64    `json:"groupId"`
	Members []string `json:"members"`
}

type CreateMessageRequest struct {
	Message     string `json:"message"`
	TargetEmail string `json:"targetEmail,omitempty"`
	GroupID     int64  `json:"groupId,omitempty"`
}

type MessageResponse struct {
	MessageID     string  `json:"id"`
	SenderEmail   string  `json:"senderEmail"`
	ReceiverEmail *string `json:"receiverEmail"`
	GroupID       *int64  `json:"groupId"`
	Message       string  `json:"message"`
	CreatedAt     string  `json:"createdAt"`
}

type OnlineResponse struct {
	Users []string `json:"users"`
}
