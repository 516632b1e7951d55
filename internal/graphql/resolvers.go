package graphql

import (
	"fmt"
	"strconv"

	"github.com/graphql-go/graphql"

	"github.com/emilythestrangee/forum/backend/internal/forum"
	"github.com/emilythestrangee/forum/backend/internal/identity"
	"github.com/emilythestrangee/forum/backend/internal/models"
)

func parseID(raw any) (int, error) {
	s, _ := raw.(string)
	id, err := strconv.Atoi(s)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: invalid id %q", forum.ErrValidation, s)
	}
	return id, nil
}

func optionalString(args map[string]any, name string) string {
	s, _ := args[name].(string)
	return s
}

// myVoteField resolves the caller's vote on the source thread; null for
// anonymous callers.
func myVoteField(gh *Handler) *graphql.Field {
	return &graphql.Field{
		Type: graphql.String,
		Resolve: func(p graphql.ResolveParams) (interface{}, error) {
			userID := identity.UserID(p.Context)
			if userID == 0 {
				return nil, nil
			}

			var threadID int
			switch t := p.Source.(type) {
			case *models.Thread:
				threadID = t.ID
			case models.Thread:
				threadID = t.ID
			default:
				return nil, nil
			}

			d, err := gh.svc.CurrentVote(p.Context, threadID, userID)
			if err != nil || d == nil {
				return nil, err
			}
			return string(*d), nil
		},
	}
}

func getThreadsQuery(gh *Handler, threadType *graphql.Object) *graphql.Field {
	return &graphql.Field{
		Type: graphql.NewList(threadType),
		Args: graphql.FieldConfigArgument{
			"category": &graphql.ArgumentConfig{Type: graphql.String},
			"sort":     &graphql.ArgumentConfig{Type: graphql.String, DefaultValue: forum.SortRecent},
		},
		Resolve: func(p graphql.ResolveParams) (interface{}, error) {
			return gh.svc.ListThreads(p.Context, forum.ThreadQuery{
				Category: optionalString(p.Args, "category"),
				Sort:     optionalString(p.Args, "sort"),
			})
		},
	}
}

func getThreadQuery(gh *Handler, threadType *graphql.Object) *graphql.Field {
	return &graphql.Field{
		Type: threadType,
		Args: graphql.FieldConfigArgument{
			"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
		},
		Resolve: func(p graphql.ResolveParams) (interface{}, error) {
			id, err := parseID(p.Args["id"])
			if err != nil {
				return nil, err
			}
			return gh.svc.GetThread(p.Context, id)
		},
	}
}

func getRepliesQuery(gh *Handler, replyType *graphql.Object) *graphql.Field {
	return &graphql.Field{
		Type: graphql.NewList(replyType),
		Args: graphql.FieldConfigArgument{
			"threadId": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
		},
		Resolve: func(p graphql.ResolveParams) (interface{}, error) {
			id, err := parseID(p.Args["threadId"])
			if err != nil {
				return nil, err
			}
			return gh.svc.ListReplies(p.Context, id)
		},
	}
}

func createThreadMutation(gh *Handler, threadType *graphql.Object) *graphql.Field {
	return &graphql.Field{
		Type: threadType,
		Args: graphql.FieldConfigArgument{
			"input": &graphql.ArgumentConfig{
				Type: graphql.NewNonNull(graphql.NewInputObject(
					graphql.InputObjectConfig{
						Name: "CreateThreadInput",
						Fields: graphql.InputObjectConfigFieldMap{
							"title":    &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
							"category": &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
							"content":  &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
						},
					},
				)),
			},
		},
		Resolve: func(p graphql.ResolveParams) (interface{}, error) {
			input := p.Args["input"].(map[string]interface{})
			return gh.svc.CreateThread(p.Context, identity.UserID(p.Context), forum.NewThread{
				Title:    optionalString(input, "title"),
				Category: optionalString(input, "category"),
				Content:  optionalString(input, "content"),
			})
		},
	}
}

func voteMutation(gh *Handler, threadType *graphql.Object) *graphql.Field {
	return &graphql.Field{
		Type: threadType,
		Args: graphql.FieldConfigArgument{
			"threadId":  &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
			"direction": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
		},
		Resolve: func(p graphql.ResolveParams) (interface{}, error) {
			id, err := parseID(p.Args["threadId"])
			if err != nil {
				return nil, err
			}
			direction, err := models.ParseDirection(optionalString(p.Args, "direction"))
			if err != nil {
				return nil, fmt.Errorf("%w: %v", forum.ErrValidation, err)
			}
			res, err := gh.svc.CastVote(p.Context, id, identity.UserID(p.Context), direction)
			if err != nil {
				return nil, err
			}
			return &res.Thread, nil
		},
	}
}

func createReplyMutation(gh *Handler, replyType *graphql.Object) *graphql.Field {
	return &graphql.Field{
		Type: replyType,
		Args: graphql.FieldConfigArgument{
			"threadId": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
			"content":  &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
		},
		Resolve: func(p graphql.ResolveParams) (interface{}, error) {
			id, err := parseID(p.Args["threadId"])
			if err != nil {
				return nil, err
			}
			return gh.svc.AppendReply(p.Context, id, identity.UserID(p.Context), optionalString(p.Args, "content"))
		},
	}
}
