package graphql

import (
	"time"

	"github.com/graphql-go/graphql"
)

var DateTime = graphql.NewScalar(
	graphql.ScalarConfig{
		Name:        "DateTime",
		Description: "DateTime scalar type",
		Serialize: func(value interface{}) interface{} {
			switch v := value.(type) {
			case time.Time:
				return v.Format(time.RFC3339)
			case *time.Time:
				if v == nil {
					return nil
				}
				return v.Format(time.RFC3339)
			default:
				return nil
			}
		},
	},
)

func (gh *Handler) initSchema() error {
	threadType := graphql.NewObject(
		graphql.ObjectConfig{
			Name: "Thread",
			Fields: graphql.Fields{
				"id":             &graphql.Field{Type: graphql.ID},
				"title":          &graphql.Field{Type: graphql.String},
				"category":       &graphql.Field{Type: graphql.String},
				"content":        &graphql.Field{Type: graphql.String},
				"authorId":       &graphql.Field{Type: graphql.ID},
				"authorName":     &graphql.Field{Type: graphql.String},
				"authorPhotoUrl": &graphql.Field{Type: graphql.String},
				"upvotes":        &graphql.Field{Type: graphql.Int},
				"downvotes":      &graphql.Field{Type: graphql.Int},
				"replyCount":     &graphql.Field{Type: graphql.Int},
				"viewCount":      &graphql.Field{Type: graphql.Int},
				"createdAt":      &graphql.Field{Type: DateTime},
				"updatedAt":      &graphql.Field{Type: DateTime},
				"myVote":         myVoteField(gh),
			},
		},
	)

	replyType := graphql.NewObject(
		graphql.ObjectConfig{
			Name: "Reply",
			Fields: graphql.Fields{
				"id":             &graphql.Field{Type: graphql.ID},
				"threadId":       &graphql.Field{Type: graphql.ID},
				"content":        &graphql.Field{Type: graphql.String},
				"authorId":       &graphql.Field{Type: graphql.ID},
				"authorName":     &graphql.Field{Type: graphql.String},
				"authorPhotoUrl": &graphql.Field{Type: graphql.String},
				"upvotes":        &graphql.Field{Type: graphql.Int},
				"downvotes":      &graphql.Field{Type: graphql.Int},
				"createdAt":      &graphql.Field{Type: DateTime},
			},
		},
	)

	queryType := graphql.NewObject(
		graphql.ObjectConfig{
			Name: "Query",
			Fields: graphql.Fields{
				"threads": getThreadsQuery(gh, threadType),
				"thread":  getThreadQuery(gh, threadType),
				"replies": getRepliesQuery(gh, replyType),
			},
		},
	)

	mutationType := graphql.NewObject(
		graphql.ObjectConfig{
			Name: "Mutation",
			Fields: graphql.Fields{
				"createThread": createThreadMutation(gh, threadType),
				"vote":         voteMutation(gh, threadType),
				"createReply":  createReplyMutation(gh, replyType),
			},
		},
	)

	schema, err := graphql.NewSchema(graphql.SchemaConfig{
		Query:    queryType,
		Mutation: mutationType,
	})
	if err != nil {
		return err
	}
	gh.schema = schema

	return nil
}
