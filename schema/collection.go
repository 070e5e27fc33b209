package schema

import (
	"fmt"
	"log"
	"time"

	"huntboard/db"
	"huntboard/models"
	"huntboard/pubsub"
	"huntboard/utils"

	"github.com/graphql-go/graphql"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var messageType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Message",
	Fields: graphql.Fields{
		"_id":        &graphql.Field{Type: graphql.ID},
		"senderId":   &graphql.Field{Type: graphql.ID},
		"senderName": &graphql.Field{Type: graphql.String},
		"content":    &graphql.Field{Type: graphql.String},
		"createdAt":  &graphql.Field{Type: dateType},
		"updatedAt":  &graphql.Field{Type: dateType},
	},
})

var collectionType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Collection",
	Fields: graphql.Fields{
		"_id":          &graphql.Field{Type: graphql.ID},
		"name":         &graphql.Field{Type: graphql.String},
		"description":  &graphql.Field{Type: graphql.String},
		"ownerId":      &graphql.Field{Type: graphql.ID},
		"sharedWith":   &graphql.Field{Type: graphql.NewList(graphql.ID)},
		"applications": &graphql.Field{Type: graphql.NewList(graphql.ID)},
		"chat":         &graphql.Field{Type: graphql.NewList(messageType)},
		"createdAt":    &graphql.Field{Type: dateType},
		"updatedAt":    &graphql.Field{Type: dateType},
	},
})

var collectionInput = graphql.NewInputObject(graphql.InputObjectConfig{
	Name: "CollectionInput",
	Fields: graphql.InputObjectConfigFieldMap{
		"name":        &graphql.InputObjectFieldConfig{Type: graphql.String},
		"description": &graphql.InputObjectFieldConfig{Type: graphql.String},
	},
})

const errCollectionView = "Collection not found or you do not have permission to view it."

func collectionQueryFields() graphql.Fields {
	return graphql.Fields{
		"getAllCollection": &graphql.Field{
			Type: graphql.NewList(collectionType),
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				user, err := authenticate(p)
				if err != nil {
					return nil, err
				}
				cur, err := db.CollectionsCollection.Find(p.Context, bson.M{"ownerId": user.ID})
				if err != nil {
					return nil, err
				}
				var cols []models.Collection
				if err := cur.All(p.Context, &cols); err != nil {
					return nil, err
				}
				return cols, nil
			},
		},
		"getCollectionById": &graphql.Field{
			Type: collectionType,
			Args: graphql.FieldConfigArgument{
				"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
			},
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				user, err := authenticate(p)
				if err != nil {
					return nil, err
				}
				col, err := findViewableCollection(p, user.ID, argString(p.Args, "id"))
				if err != nil {
					return nil, err
				}
				return *col, nil
			},
		},
	}
}

func collectionMutationFields(deps Deps) graphql.Fields {
	return graphql.Fields{
		"createCollection": &graphql.Field{
			Type: collectionType,
			Args: graphql.FieldConfigArgument{
				"input": &graphql.ArgumentConfig{Type: graphql.NewNonNull(collectionInput)},
			},
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				user, err := authenticate(p)
				if err != nil {
					return nil, err
				}
				input := argMap(p.Args, "input")
				name := argString(input, "name")
				if name == "" {
					return nil, fmt.Errorf("name is required")
				}
				now := time.Now()
				col := models.Collection{
					ID:           utils.NewID(),
					Name:         name,
					Description:  argString(input, "description"),
					OwnerID:      user.ID,
					SharedWith:   []string{},
					Applications: []string{},
					Chat:         []models.Message{},
					CreatedAt:    now,
					UpdatedAt:    now,
				}
				if _, err := db.CollectionsCollection.InsertOne(p.Context, col); err != nil {
					return nil, err
				}
				return col, nil
			},
		},
		"updateCollection": &graphql.Field{
			Type: collectionType,
			Args: graphql.FieldConfigArgument{
				"id":    &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
				"input": &graphql.ArgumentConfig{Type: graphql.NewNonNull(collectionInput)},
			},
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				user, err := authenticate(p)
				if err != nil {
					return nil, err
				}
				col, err := findCollection(p, argString(p.Args, "id"))
				if err != nil {
					return nil, err
				}
				if !isOwner(*col, user.ID) {
					return nil, fmt.Errorf("You do not have permission to update this collection.")
				}
				set := bson.M{"updatedAt": time.Now()}
				input := argMap(p.Args, "input")
				if v, ok := input["name"].(string); ok {
					set["name"] = v
				}
				if v, ok := input["description"].(string); ok {
					set["description"] = v
				}
				return saveCollection(p, col.ID, bson.M{"$set": set})
			},
		},
		"deleteCollection": &graphql.Field{
			Type: collectionType,
			Args: graphql.FieldConfigArgument{
				"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
			},
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				user, err := authenticate(p)
				if err != nil {
					return nil, err
				}
				col, err := findCollection(p, argString(p.Args, "id"))
				if err != nil {
					return nil, err
				}
				if !isOwner(*col, user.ID) {
					return nil, fmt.Errorf("You do not have permission to delete this collection")
				}
				if _, err := db.CollectionsCollection.DeleteOne(p.Context, bson.M{"_id": col.ID}); err != nil {
					return nil, err
				}
				// clean up back-references on members and applications
				if len(col.SharedWith) > 0 {
					_, err := db.UsersCollection.UpdateMany(p.Context,
						bson.M{"_id": bson.M{"$in": col.SharedWith}},
						bson.M{"$pull": bson.M{"collections": col.ID}},
					)
					if err != nil {
						log.Printf("collection %s member cleanup failed: %v", col.ID, err)
					}
				}
				if len(col.Applications) > 0 {
					_, err := db.ApplicationsCollection.UpdateMany(p.Context,
						bson.M{"_id": bson.M{"$in": col.Applications}},
						bson.M{"$unset": bson.M{"collectionId": ""}},
					)
					if err != nil {
						log.Printf("collection %s application cleanup failed: %v", col.ID, err)
					}
				}
				return *col, nil
			},
		},
		"addUsersToCollection": &graphql.Field{
			Type: collectionType,
			Args: graphql.FieldConfigArgument{
				"collectionId": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
				"userIds":      &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.NewList(graphql.ID))},
			},
			Resolve: resolveAddUsers,
		},
		"removeUsersFromCollection": &graphql.Field{
			Type: collectionType,
			Args: graphql.FieldConfigArgument{
				"collectionId": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
				"userIds":      &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.NewList(graphql.ID))},
			},
			Resolve: resolveRemoveUsers,
		},
		"addApplicationsToCollection": &graphql.Field{
			Type: collectionType,
			Args: graphql.FieldConfigArgument{
				"collectionId":   &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
				"applicationIds": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.NewList(graphql.ID))},
			},
			Resolve: resolveAddApplications,
		},
		"removeApplicationFromCollection": &graphql.Field{
			Type: collectionType,
			Args: graphql.FieldConfigArgument{
				"collectionId":  &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
				"applicationId": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
			},
			Resolve: resolveRemoveApplication,
		},
		"addMessageToChat": &graphql.Field{
			Type: collectionType,
			Args: graphql.FieldConfigArgument{
				"collectionId": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
				"message":      &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
			},
			Resolve: resolveAddMessage(deps),
		},
	}
}

func resolveAddUsers(p graphql.ResolveParams) (interface{}, error) {
	user, err := authenticate(p)
	if err != nil {
		return nil, err
	}
	col, err := findCollection(p, argString(p.Args, "collectionId"))
	if err != nil {
		return nil, err
	}
	if !isOwner(*col, user.ID) {
		return nil, fmt.Errorf("You do not have permission to share this collection")
	}
	userIDs := argStrings(p.Args, "userIds")
	if err := screenNewMembers(userIDs, col.SharedWith); err != nil {
		return nil, err
	}
	if n, err := db.UsersCollection.CountDocuments(p.Context, bson.M{"_id": bson.M{"$in": userIDs}}); err != nil {
		return nil, err
	} else if int(n) != len(userIDs) {
		return nil, fmt.Errorf("No User Found")
	}
	updated, err := saveCollection(p, col.ID, bson.M{
		"$push": bson.M{"sharedWith": bson.M{"$each": userIDs}},
		"$set":  bson.M{"updatedAt": time.Now()},
	})
	if err != nil {
		return nil, err
	}
	_, err = db.UsersCollection.UpdateMany(p.Context,
		bson.M{"_id": bson.M{"$in": userIDs}},
		bson.M{"$addToSet": bson.M{"collections": col.ID}},
	)
	if err != nil {
		log.Printf("collection %s membership back-reference failed: %v", col.ID, err)
	}
	return updated, nil
}

func resolveRemoveUsers(p graphql.ResolveParams) (interface{}, error) {
	user, err := authenticate(p)
	if err != nil {
		return nil, err
	}
	col, err := findCollection(p, argString(p.Args, "collectionId"))
	if err != nil {
		return nil, err
	}
	if !isOwner(*col, user.ID) {
		return nil, fmt.Errorf("You do not have permission to share this collection")
	}
	userIDs := argStrings(p.Args, "userIds")
	updated, err := saveCollection(p, col.ID, bson.M{
		"$pull": bson.M{"sharedWith": bson.M{"$in": userIDs}},
		"$set":  bson.M{"updatedAt": time.Now()},
	})
	if err != nil {
		return nil, err
	}
	_, err = db.UsersCollection.UpdateMany(p.Context,
		bson.M{"_id": bson.M{"$in": userIDs}},
		bson.M{"$pull": bson.M{"collections": col.ID}},
	)
	if err != nil {
		log.Printf("collection %s membership back-reference failed: %v", col.ID, err)
	}
	return updated, nil
}

func resolveAddApplications(p graphql.ResolveParams) (interface{}, error) {
	user, err := authenticate(p)
	if err != nil {
		return nil, err
	}
	id := argString(p.Args, "collectionId")
	if !utils.ValidID(id) {
		return nil, fmt.Errorf("Collection not found or you do not have permission to update it.")
	}
	var found models.Collection
	err = db.CollectionsCollection.FindOne(p.Context, bson.M{"_id": id, "ownerId": user.ID}).Decode(&found)
	if err == mongo.ErrNoDocuments {
		return nil, fmt.Errorf("Collection not found or you do not have permission to update it.")
	}
	if err != nil {
		return nil, err
	}
	col := &found
	appIDs := argStrings(p.Args, "applicationIds")
	appIDs = excluding(appIDs, col.Applications)
	if len(appIDs) == 0 {
		return *col, nil
	}
	n, err := db.ApplicationsCollection.CountDocuments(p.Context,
		bson.M{"_id": bson.M{"$in": appIDs}, "ownerId": user.ID})
	if err != nil {
		return nil, err
	}
	if err := requireAllOwned(n, len(appIDs)); err != nil {
		return nil, err
	}
	updated, err := saveCollection(p, col.ID, bson.M{
		"$push": bson.M{"applications": bson.M{"$each": appIDs}},
		"$set":  bson.M{"updatedAt": time.Now()},
	})
	if err != nil {
		return nil, err
	}
	_, err = db.ApplicationsCollection.UpdateMany(p.Context,
		bson.M{"_id": bson.M{"$in": appIDs}},
		bson.M{"$set": bson.M{"collectionId": col.ID}},
	)
	if err != nil {
		log.Printf("collection %s application back-reference failed: %v", col.ID, err)
	}
	return updated, nil
}

func resolveRemoveApplication(p graphql.ResolveParams) (interface{}, error) {
	user, err := authenticate(p)
	if err != nil {
		return nil, err
	}
	col, err := findCollection(p, argString(p.Args, "collectionId"))
	if err != nil {
		return nil, err
	}
	if !isOwner(*col, user.ID) {
		return nil, fmt.Errorf("You are not authorized to remove applications from this collection")
	}
	appID := argString(p.Args, "applicationId")
	updated, err := saveCollection(p, col.ID, bson.M{
		"$pull": bson.M{"applications": appID},
		"$set":  bson.M{"updatedAt": time.Now()},
	})
	if err != nil {
		return nil, err
	}
	_, err = db.ApplicationsCollection.UpdateOne(p.Context,
		bson.M{"_id": appID},
		bson.M{"$unset": bson.M{"collectionId": ""}},
	)
	if err != nil {
		log.Printf("collection %s application back-reference failed: %v", col.ID, err)
	}
	return updated, nil
}

func resolveAddMessage(deps Deps) graphql.FieldResolveFn {
	return func(p graphql.ResolveParams) (interface{}, error) {
		user, err := authenticate(p)
		if err != nil {
			return nil, err
		}
		col, err := findViewableCollection(p, user.ID, argString(p.Args, "collectionId"))
		if err != nil {
			return nil, err
		}
		now := time.Now()
		msg := models.Message{
			ID:         utils.NewID(),
			SenderID:   user.ID,
			SenderName: user.Username,
			Content:    argString(p.Args, "message"),
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		updated, err := saveCollection(p, col.ID, bson.M{
			"$push": bson.M{"chat": msg},
			"$set":  bson.M{"updatedAt": now},
		})
		if err != nil {
			return nil, err
		}
		if err := deps.Broker.Publish(p.Context, pubsub.ChatTopic(col.ID), msg); err != nil {
			log.Printf("chat publish to %s failed: %v", col.ID, err)
		}
		return updated, nil
	}
}

// findCollection loads a collection by id; the deliberately terse error never
// reveals whether an id exists but is foreign.
func findCollection(p graphql.ResolveParams, id string) (*models.Collection, error) {
	if !utils.ValidID(id) {
		return nil, fmt.Errorf("Collection not found")
	}
	var col models.Collection
	err := db.CollectionsCollection.FindOne(p.Context, bson.M{"_id": id}).Decode(&col)
	if err == mongo.ErrNoDocuments {
		return nil, fmt.Errorf("Collection not found")
	}
	if err != nil {
		return nil, err
	}
	return &col, nil
}

func findViewableCollection(p graphql.ResolveParams, userID, id string) (*models.Collection, error) {
	if !utils.ValidID(id) {
		return nil, fmt.Errorf(errCollectionView)
	}
	var col models.Collection
	err := db.CollectionsCollection.FindOne(p.Context, bson.M{"_id": id}).Decode(&col)
	if err == mongo.ErrNoDocuments {
		return nil, fmt.Errorf(errCollectionView)
	}
	if err != nil {
		return nil, err
	}
	if !canView(col, userID) {
		return nil, fmt.Errorf(errCollectionView)
	}
	return &col, nil
}

func saveCollection(p graphql.ResolveParams, id string, update bson.M) (interface{}, error) {
	var updated models.Collection
	after := options.After
	err := db.CollectionsCollection.FindOneAndUpdate(p.Context,
		bson.M{"_id": id},
		update,
		&options.FindOneAndUpdateOptions{ReturnDocument: &after},
	).Decode(&updated)
	if err == mongo.ErrNoDocuments {
		return nil, fmt.Errorf("Collection not found")
	}
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func isOwner(col models.Collection, userID string) bool {
	return col.OwnerID == userID
}

func canView(col models.Collection, userID string) bool {
	return col.OwnerID == userID || utils.Contains(col.SharedWith, userID)
}

// screenNewMembers rejects malformed ids and ids that already share the
// collection, including duplicates within the batch itself.
func screenNewMembers(ids, sharedWith []string) error {
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if !utils.ValidID(id) {
			return fmt.Errorf("User id is invalid")
		}
		if seen[id] || utils.Contains(sharedWith, id) {
			return fmt.Errorf("User is already added to this collection")
		}
		seen[id] = true
	}
	return nil
}

// requireAllOwned rejects the whole batch unless every id matched the
// caller-owned count.
func requireAllOwned(owned int64, total int) error {
	if int(owned) != total {
		return fmt.Errorf("One or more applications are not owned by the current user.")
	}
	return nil
}

// excluding returns ids with every member of present filtered out.
func excluding(ids, present []string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if !utils.Contains(present, id) {
			out = append(out, id)
		}
	}
	return out
}
