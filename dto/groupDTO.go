package dto

type CreateGroupRequest struct {
	Name         string   `json:"name" binding:"required"`
	MemberEmails []string `json:"memberEmails" binding:"required"`
}

type GroupResponse struct {
	Name    string   `json:"name"`
	Members []string `json:"members"`
}

type CreateGroupResponse struct {
	Group           GroupResponse `json:"group"`
	MembersNotFound []string      `json:"membersNotFound"`
}
