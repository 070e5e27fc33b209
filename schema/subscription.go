package schema

import (
	"fmt"

	"huntboard/pubsub"

	"github.com/graphql-go/graphql"
)

// Subscription resolvers return the broker channel from their Subscribe hook;
// the Resolve hook then just forwards each published payload. A goroutine tied
// to the request context tears the broker subscription down when the client
// goes away.
func subscriptionFields(deps Deps) graphql.Fields {
	return graphql.Fields{
		"newMessage": &graphql.Field{
			Type: messageType,
			Args: graphql.FieldConfigArgument{
				"collectionId": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
			},
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				return p.Source, nil
			},
			Subscribe: func(p graphql.ResolveParams) (interface{}, error) {
				user, err := authenticate(p)
				if err != nil {
					return nil, err
				}
				col, err := findViewableCollection(p, user.ID, argString(p.Args, "collectionId"))
				if err != nil {
					return nil, err
				}
				return subscribeTopic(p, deps.Broker, pubsub.ChatTopic(col.ID))
			},
		},
		"presenceChanged": &graphql.Field{
			Type: presenceEventType,
			Args: graphql.FieldConfigArgument{
				"collectionId": &graphql.ArgumentConfig{Type: graphql.ID},
			},
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				return p.Source, nil
			},
			Subscribe: func(p graphql.ResolveParams) (interface{}, error) {
				user, err := authenticate(p)
				if err != nil {
					return nil, err
				}
				topic := pubsub.TopicPresence
				if id := argString(p.Args, "collectionId"); id != "" {
					col, err := findViewableCollection(p, user.ID, id)
					if err != nil {
						return nil, err
					}
					topic = pubsub.PresenceTopic(col.ID)
				}
				return subscribeTopic(p, deps.Broker, topic)
			},
		},
	}
}

func subscribeTopic(p graphql.ResolveParams, broker pubsub.Broker, topic string) (interface{}, error) {
	if broker == nil {
		return nil, fmt.Errorf("subscriptions are not available")
	}
	ch, cancel := broker.Subscribe(p.Context, topic)
	go func() {
		<-p.Context.Done()
		cancel()
	}()
	return ch, nil
}
