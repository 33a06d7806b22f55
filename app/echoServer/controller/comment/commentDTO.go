package comment

type AddCommentReq struct {
	ParentID *int64 `json:"parent_id"`
	Content  string `json:"content" validate:"required"`
}

type EditCommentReq struct {
	Content string `json:"content" validate:"required"`
}

type VoteReq struct {
	Vote string `json:"vote" validate:"required,oneof=upvote downvote"`
}
