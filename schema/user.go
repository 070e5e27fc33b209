package schema

import (
	"context"
	"fmt"
	"log"
	"time"

	"huntboard/auth"
	"huntboard/db"
	"huntboard/models"
	"huntboard/pubsub"
	"huntboard/utils"

	"github.com/graphql-go/graphql"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var experienceType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Experience",
	Fields: graphql.Fields{
		"_id":       &graphql.Field{Type: graphql.ID},
		"jobTitle":  &graphql.Field{Type: graphql.String},
		"institute": &graphql.Field{Type: graphql.String},
		"startDate": &graphql.Field{Type: dateType},
		"endDate":   &graphql.Field{Type: dateType},
	},
})

var educationType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Education",
	Fields: graphql.Fields{
		"_id":       &graphql.Field{Type: graphql.ID},
		"name":      &graphql.Field{Type: graphql.String},
		"institute": &graphql.Field{Type: graphql.String},
		"startDate": &graphql.Field{Type: dateType},
		"endDate":   &graphql.Field{Type: dateType},
	},
})

var licenseType = graphql.NewObject(graphql.ObjectConfig{
	Name: "License",
	Fields: graphql.Fields{
		"_id":        &graphql.Field{Type: graphql.ID},
		"number":     &graphql.Field{Type: graphql.String},
		"name":       &graphql.Field{Type: graphql.String},
		"issuedBy":   &graphql.Field{Type: graphql.String},
		"issuedAt":   &graphql.Field{Type: dateType},
		"expiryDate": &graphql.Field{Type: dateType},
	},
})

var profileType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Profile",
	Fields: graphql.Fields{
		"_id":         &graphql.Field{Type: graphql.ID},
		"bio":         &graphql.Field{Type: graphql.String},
		"location":    &graphql.Field{Type: graphql.String},
		"jobPrefs":    &graphql.Field{Type: graphql.NewList(graphql.String)},
		"experiences": &graphql.Field{Type: graphql.NewList(experienceType)},
		"education":   &graphql.Field{Type: graphql.NewList(educationType)},
		"licenses":    &graphql.Field{Type: graphql.NewList(licenseType)},
		"createdAt":   &graphql.Field{Type: dateType},
		"updatedAt":   &graphql.Field{Type: dateType},
	},
})

var userType = graphql.NewObject(graphql.ObjectConfig{
	Name: "User",
	Fields: graphql.Fields{
		"_id":         &graphql.Field{Type: graphql.ID},
		"username":    &graphql.Field{Type: graphql.String},
		"avatar":      &graphql.Field{Type: graphql.String},
		"fullName":    &graphql.Field{Type: graphql.String},
		"email":       &graphql.Field{Type: graphql.String},
		"password":    &graphql.Field{Type: graphql.String}, // bcrypt hash, never plaintext
		"isOnline":    &graphql.Field{Type: graphql.Int},
		"collections": &graphql.Field{Type: graphql.NewList(graphql.ID)},
		"profile":     &graphql.Field{Type: profileType},
		"createdAt":   &graphql.Field{Type: dateType},
		"updatedAt":   &graphql.Field{Type: dateType},
	},
})

var loginPayloadType = graphql.NewObject(graphql.ObjectConfig{
	Name: "LoginPayload",
	Fields: graphql.Fields{
		"access_token": &graphql.Field{Type: graphql.String},
		"userId":       &graphql.Field{Type: graphql.ID},
		"username":     &graphql.Field{Type: graphql.String},
		"email":        &graphql.Field{Type: graphql.String},
	},
})

var presenceEventType = graphql.NewObject(graphql.ObjectConfig{
	Name: "PresenceEvent",
	Fields: graphql.Fields{
		"userId":   &graphql.Field{Type: graphql.ID},
		"username": &graphql.Field{Type: graphql.String},
		"isOnline": &graphql.Field{Type: graphql.Int},
	},
})

var registerInput = graphql.NewInputObject(graphql.InputObjectConfig{
	Name: "RegisterInput",
	Fields: graphql.InputObjectConfigFieldMap{
		"username": &graphql.InputObjectFieldConfig{Type: graphql.String},
		"avatar":   &graphql.InputObjectFieldConfig{Type: graphql.String},
		"fullName": &graphql.InputObjectFieldConfig{Type: graphql.String},
		"email":    &graphql.InputObjectFieldConfig{Type: graphql.String},
		"password": &graphql.InputObjectFieldConfig{Type: graphql.String},
	},
})

var experienceInput = graphql.NewInputObject(graphql.InputObjectConfig{
	Name: "ExperienceInput",
	Fields: graphql.InputObjectConfigFieldMap{
		"jobTitle":  &graphql.InputObjectFieldConfig{Type: graphql.String},
		"institute": &graphql.InputObjectFieldConfig{Type: graphql.String},
		"startDate": &graphql.InputObjectFieldConfig{Type: dateType},
		"endDate":   &graphql.InputObjectFieldConfig{Type: dateType},
	},
})

var educationInput = graphql.NewInputObject(graphql.InputObjectConfig{
	Name: "EducationInput",
	Fields: graphql.InputObjectConfigFieldMap{
		"name":      &graphql.InputObjectFieldConfig{Type: graphql.String},
		"institute": &graphql.InputObjectFieldConfig{Type: graphql.String},
		"startDate": &graphql.InputObjectFieldConfig{Type: dateType},
		"endDate":   &graphql.InputObjectFieldConfig{Type: dateType},
	},
})

var licenseInput = graphql.NewInputObject(graphql.InputObjectConfig{
	Name: "LicenseInput",
	Fields: graphql.InputObjectConfigFieldMap{
		"number":     &graphql.InputObjectFieldConfig{Type: graphql.String},
		"name":       &graphql.InputObjectFieldConfig{Type: graphql.String},
		"issuedBy":   &graphql.InputObjectFieldConfig{Type: graphql.String},
		"issuedAt":   &graphql.InputObjectFieldConfig{Type: dateType},
		"expiryDate": &graphql.InputObjectFieldConfig{Type: dateType},
	},
})

func userQueryFields() graphql.Fields {
	return graphql.Fields{
		"getAllUsers": &graphql.Field{
			Type: graphql.NewList(userType),
			Args: graphql.FieldConfigArgument{
				"keyword": &graphql.ArgumentConfig{Type: graphql.String},
			},
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				filter := bson.M{}
				if keyword := argString(p.Args, "keyword"); keyword != "" {
					rx := bson.M{"$regex": keyword, "$options": "i"}
					filter["$or"] = []bson.M{{"username": rx}, {"email": rx}}
				}
				cur, err := db.UsersCollection.Find(p.Context, filter)
				if err != nil {
					return nil, err
				}
				var users []models.User
				if err := cur.All(p.Context, &users); err != nil {
					return nil, err
				}
				return users, nil
			},
		},
		"getUserById": &graphql.Field{
			Type: userType,
			Args: graphql.FieldConfigArgument{
				"userId": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
			},
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				userID := argString(p.Args, "userId")
				if !utils.ValidID(userID) {
					return nil, fmt.Errorf("User id is invalid")
				}
				var user models.User
				err := db.UsersCollection.FindOne(p.Context, bson.M{"_id": userID}).Decode(&user)
				if err == mongo.ErrNoDocuments {
					return nil, fmt.Errorf("No User Found")
				}
				if err != nil {
					return nil, err
				}
				return user, nil
			},
		},
		"getAuthenticatedUser": &graphql.Field{
			Type: userType,
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				user, err := authenticate(p)
				if err != nil {
					return nil, err
				}
				return *user, nil
			},
		},
	}
}

func userMutationFields(deps Deps) graphql.Fields {
	return graphql.Fields{
		"register": &graphql.Field{
			Type: userType,
			Args: graphql.FieldConfigArgument{
				"input": &graphql.ArgumentConfig{Type: graphql.NewNonNull(registerInput)},
			},
			Resolve: resolveRegister,
		},
		"login": &graphql.Field{
			Type: loginPayloadType,
			Args: graphql.FieldConfigArgument{
				"email":    &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				"password": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
			},
			Resolve: resolveLogin,
		},
		"updateUserPresence": &graphql.Field{
			Type: userType,
			Args: graphql.FieldConfigArgument{
				"isOnline": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Boolean)},
			},
			Resolve: resolvePresence(deps),
		},
		"updateBio": &graphql.Field{
			Type: profileType,
			Args: graphql.FieldConfigArgument{
				"bio": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
			},
			Resolve: profileFieldSetter("bio"),
		},
		"updateLocation": &graphql.Field{
			Type: profileType,
			Args: graphql.FieldConfigArgument{
				"location": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
			},
			Resolve: profileFieldSetter("location"),
		},
		"updateJobPrefs": &graphql.Field{
			Type: profileType,
			Args: graphql.FieldConfigArgument{
				"jobPrefs": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.NewList(graphql.String))},
			},
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				user, err := authenticate(p)
				if err != nil {
					return nil, fmt.Errorf("Update Failed: %s", err)
				}
				return saveProfile(p, user.ID, bson.M{"profile.jobPrefs": argStrings(p.Args, "jobPrefs")}, "Update Failed")
			},
		},
		"addExperience": &graphql.Field{
			Type: profileType,
			Args: graphql.FieldConfigArgument{
				"input": &graphql.ArgumentConfig{Type: graphql.NewNonNull(experienceInput)},
			},
			Resolve: resolveAddExperience,
		},
		"updateExperience": &graphql.Field{
			Type: profileType,
			Args: graphql.FieldConfigArgument{
				"experienceId": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
				"input":        &graphql.ArgumentConfig{Type: graphql.NewNonNull(experienceInput)},
			},
			Resolve: resolveUpdateExperience,
		},
		"deleteExperience": &graphql.Field{
			Type: profileType,
			Args: graphql.FieldConfigArgument{
				"experienceId": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
			},
			Resolve: resolveDeleteExperience,
		},
		"addEducation": &graphql.Field{
			Type: profileType,
			Args: graphql.FieldConfigArgument{
				"input": &graphql.ArgumentConfig{Type: graphql.NewNonNull(educationInput)},
			},
			Resolve: resolveAddEducation,
		},
		"updateEducation": &graphql.Field{
			Type: profileType,
			Args: graphql.FieldConfigArgument{
				"educationId": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
				"input":       &graphql.ArgumentConfig{Type: graphql.NewNonNull(educationInput)},
			},
			Resolve: resolveUpdateEducation,
		},
		"deleteEducation": &graphql.Field{
			Type: profileType,
			Args: graphql.FieldConfigArgument{
				"educationId": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
			},
			Resolve: resolveDeleteEducation,
		},
		"addLicense": &graphql.Field{
			Type: profileType,
			Args: graphql.FieldConfigArgument{
				"input": &graphql.ArgumentConfig{Type: graphql.NewNonNull(licenseInput)},
			},
			Resolve: resolveAddLicense,
		},
		"updateLicense": &graphql.Field{
			Type: profileType,
			Args: graphql.FieldConfigArgument{
				"licenseId": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
				"input":     &graphql.ArgumentConfig{Type: graphql.NewNonNull(licenseInput)},
			},
			Resolve: resolveUpdateLicense,
		},
		"deleteLicense": &graphql.Field{
			Type: profileType,
			Args: graphql.FieldConfigArgument{
				"licenseId": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
			},
			Resolve: resolveDeleteLicense,
		},
	}
}

func resolveRegister(p graphql.ResolveParams) (interface{}, error) {
	input := argMap(p.Args, "input")
	username := argString(input, "username")
	fullName := argString(input, "fullName")
	email := argString(input, "email")
	password := argString(input, "password")

	if !auth.ValidEmail(email) {
		return nil, fmt.Errorf("Registration failed: Invalid email format.")
	}
	if username == "" || fullName == "" || password == "" {
		return nil, fmt.Errorf("Registration failed: All fields are required.")
	}
	if err := auth.ValidatePassword(password); err != nil {
		return nil, fmt.Errorf("Registration failed: %s", err)
	}

	err := db.UsersCollection.FindOne(p.Context, bson.M{"email": email}).Err()
	if err == nil {
		return nil, fmt.Errorf("Registration failed: Email already in use.")
	}
	if err != mongo.ErrNoDocuments {
		return nil, err
	}
	err = db.UsersCollection.FindOne(p.Context, bson.M{"username": username}).Err()
	if err == nil {
		return nil, fmt.Errorf("Registration failed: Username is already taken.")
	}
	if err != mongo.ErrNoDocuments {
		return nil, err
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("Registration failed: %s", err)
	}

	now := time.Now()
	user := models.User{
		ID:          utils.NewID(),
		Username:    username,
		Avatar:      argString(input, "avatar"),
		FullName:    fullName,
		Email:       email,
		Password:    hash,
		Collections: []string{},
		Profile: models.Profile{
			ID:          utils.NewID(),
			JobPrefs:    []string{},
			Experiences: []models.Experience{},
			Education:   []models.Education{},
			Licenses:    []models.License{},
			CreatedAt:   now,
			UpdatedAt:   now,
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := db.UsersCollection.InsertOne(p.Context, user); err != nil {
		return nil, fmt.Errorf("Registration failed: %s", err)
	}
	return user, nil
}

func resolveLogin(p graphql.ResolveParams) (interface{}, error) {
	email := argString(p.Args, "email")
	password := argString(p.Args, "password")

	var user models.User
	err := db.UsersCollection.FindOne(p.Context, bson.M{"email": email}).Decode(&user)
	if err == mongo.ErrNoDocuments {
		return nil, fmt.Errorf("Login failed: Invalid Email/Password")
	}
	if err != nil {
		return nil, err
	}
	if !auth.ComparePassword(password, user.Password) {
		return nil, fmt.Errorf("Login failed: Invalid Email/Password")
	}
	token, err := auth.SignToken(user.ID, user.Username, user.Email)
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{
		"access_token": token,
		"userId":       user.ID,
		"username":     user.Username,
		"email":        user.Email,
	}, nil
}

func resolvePresence(deps Deps) graphql.FieldResolveFn {
	return func(p graphql.ResolveParams) (interface{}, error) {
		user, err := authenticate(p)
		if err != nil {
			return nil, err
		}
		delta := -1
		if argBool(p.Args, "isOnline") {
			delta = 1
		}
		var updated models.User
		after := options.After
		err = db.UsersCollection.FindOneAndUpdate(p.Context,
			bson.M{"_id": user.ID},
			bson.M{"$inc": bson.M{"isOnline": delta}, "$set": bson.M{"updatedAt": time.Now()}},
			&options.FindOneAndUpdateOptions{ReturnDocument: &after},
		).Decode(&updated)
		if err != nil {
			return nil, err
		}

		event := models.PresenceEvent{
			UserID:   updated.ID,
			Username: updated.Username,
			IsOnline: updated.IsOnline,
		}
		for _, topic := range presenceTopics(p.Context, updated.ID) {
			if err := deps.Broker.Publish(p.Context, topic, event); err != nil {
				log.Printf("presence publish to %s failed: %v", topic, err)
			}
		}
		return updated, nil
	}
}

// presenceTopics lists the global presence topic plus one per collection the
// user owns or participates in, so collection-scoped subscribers only hear
// about their own members.
func presenceTopics(ctx context.Context, userID string) []string {
	cur, err := db.CollectionsCollection.Find(ctx,
		bson.M{"$or": []bson.M{{"ownerId": userID}, {"sharedWith": userID}}},
		options.Find().SetProjection(bson.M{"_id": 1}),
	)
	if err != nil {
		log.Printf("presence topic lookup failed: %v", err)
		return presenceFanOut(nil)
	}
	var refs []struct {
		ID string `bson:"_id"`
	}
	if err := cur.All(ctx, &refs); err != nil {
		log.Printf("presence topic decode failed: %v", err)
		return presenceFanOut(nil)
	}
	ids := make([]string, 0, len(refs))
	for _, ref := range refs {
		ids = append(ids, ref.ID)
	}
	return presenceFanOut(ids)
}

// presenceFanOut is the global presence topic plus one per collection.
func presenceFanOut(collectionIDs []string) []string {
	topics := make([]string, 0, len(collectionIDs)+1)
	topics = append(topics, pubsub.TopicPresence)
	for _, id := range collectionIDs {
		topics = append(topics, pubsub.PresenceTopic(id))
	}
	return topics
}

// profileFieldSetter handles the single-scalar profile mutations.
func profileFieldSetter(field string) graphql.FieldResolveFn {
	return func(p graphql.ResolveParams) (interface{}, error) {
		user, err := authenticate(p)
		if err != nil {
			return nil, fmt.Errorf("Update Failed: %s", err)
		}
		return saveProfile(p, user.ID, bson.M{"profile." + field: argString(p.Args, field)}, "Update Failed")
	}
}

// saveProfile applies set and returns the updated embedded profile.
func saveProfile(p graphql.ResolveParams, userID string, set bson.M, prefix string) (interface{}, error) {
	set["profile.updatedAt"] = time.Now()
	var updated models.User
	after := options.After
	err := db.UsersCollection.FindOneAndUpdate(p.Context,
		bson.M{"_id": userID},
		bson.M{"$set": set},
		&options.FindOneAndUpdateOptions{ReturnDocument: &after},
	).Decode(&updated)
	if err != nil {
		return nil, fmt.Errorf("%s: %s", prefix, err)
	}
	return updated.Profile, nil
}

func resolveAddExperience(p graphql.ResolveParams) (interface{}, error) {
	user, err := authenticate(p)
	if err != nil {
		return nil, fmt.Errorf("Adding Failed: %s", err)
	}
	input := argMap(p.Args, "input")
	exp := models.Experience{
		ID:        utils.NewID(),
		JobTitle:  argString(input, "jobTitle"),
		Institute: argString(input, "institute"),
		StartDate: argTime(input, "startDate"),
		EndDate:   argTime(input, "endDate"),
	}
	if exp.JobTitle == "" || exp.Institute == "" || exp.StartDate.IsZero() {
		return nil, fmt.Errorf("Adding Failed: jobTitle, institute and startDate are required.")
	}
	return pushProfileRecord(p, user.ID, "profile.experiences", exp, "Adding Failed")
}

func resolveUpdateExperience(p graphql.ResolveParams) (interface{}, error) {
	user, err := authenticate(p)
	if err != nil {
		return nil, fmt.Errorf("Update Failed: %s", err)
	}
	input := argMap(p.Args, "input")
	list, ok := replaceExperience(user.Profile.Experiences, argString(p.Args, "experienceId"), input)
	if !ok {
		return nil, fmt.Errorf("Update Failed: Experience not found")
	}
	return saveProfile(p, user.ID, bson.M{"profile.experiences": list}, "Update Failed")
}

func resolveDeleteExperience(p graphql.ResolveParams) (interface{}, error) {
	user, err := authenticate(p)
	if err != nil {
		return nil, fmt.Errorf("Delete Failed: %s", err)
	}
	list, ok := removeExperience(user.Profile.Experiences, argString(p.Args, "experienceId"))
	if !ok {
		return nil, fmt.Errorf("Delete Failed: Experience not found")
	}
	return saveProfile(p, user.ID, bson.M{"profile.experiences": list}, "Delete Failed")
}

func resolveAddEducation(p graphql.ResolveParams) (interface{}, error) {
	user, err := authenticate(p)
	if err != nil {
		return nil, fmt.Errorf("Adding Failed: %s", err)
	}
	input := argMap(p.Args, "input")
	edu := models.Education{
		ID:        utils.NewID(),
		Name:      argString(input, "name"),
		Institute: argString(input, "institute"),
		StartDate: argTime(input, "startDate"),
		EndDate:   argTime(input, "endDate"),
	}
	if edu.Name == "" || edu.Institute == "" || edu.StartDate.IsZero() || edu.EndDate.IsZero() {
		return nil, fmt.Errorf("Adding Failed: name, institute, startDate and endDate are required.")
	}
	return pushProfileRecord(p, user.ID, "profile.education", edu, "Adding Failed")
}

func resolveUpdateEducation(p graphql.ResolveParams) (interface{}, error) {
	user, err := authenticate(p)
	if err != nil {
		return nil, fmt.Errorf("Update Failed: %s", err)
	}
	input := argMap(p.Args, "input")
	list, ok := replaceEducation(user.Profile.Education, argString(p.Args, "educationId"), input)
	if !ok {
		return nil, fmt.Errorf("Update Failed: Education not found")
	}
	return saveProfile(p, user.ID, bson.M{"profile.education": list}, "Update Failed")
}

func resolveDeleteEducation(p graphql.ResolveParams) (interface{}, error) {
	user, err := authenticate(p)
	if err != nil {
		return nil, fmt.Errorf("Delete Failed: %s", err)
	}
	list, ok := removeEducation(user.Profile.Education, argString(p.Args, "educationId"))
	if !ok {
		return nil, fmt.Errorf("Delete Failed: Education not found")
	}
	return saveProfile(p, user.ID, bson.M{"profile.education": list}, "Delete Failed")
}

func resolveAddLicense(p graphql.ResolveParams) (interface{}, error) {
	user, err := authenticate(p)
	if err != nil {
		return nil, fmt.Errorf("Adding Failed: %s", err)
	}
	input := argMap(p.Args, "input")
	lic := models.License{
		ID:         utils.NewID(),
		Number:     argString(input, "number"),
		Name:       argString(input, "name"),
		IssuedBy:   argString(input, "issuedBy"),
		IssuedAt:   argTime(input, "issuedAt"),
		ExpiryDate: argTime(input, "expiryDate"),
	}
	if lic.Number == "" || lic.Name == "" || lic.IssuedBy == "" || lic.IssuedAt.IsZero() {
		return nil, fmt.Errorf("Adding Failed: number, name, issuedBy and issuedAt are required.")
	}
	return pushProfileRecord(p, user.ID, "profile.licenses", lic, "Adding Failed")
}

func resolveUpdateLicense(p graphql.ResolveParams) (interface{}, error) {
	user, err := authenticate(p)
	if err != nil {
		return nil, fmt.Errorf("Update Failed: %s", err)
	}
	input := argMap(p.Args, "input")
	list, ok := replaceLicense(user.Profile.Licenses, argString(p.Args, "licenseId"), input)
	if !ok {
		return nil, fmt.Errorf("Update Failed: License not found")
	}
	return saveProfile(p, user.ID, bson.M{"profile.licenses": list}, "Update Failed")
}

func resolveDeleteLicense(p graphql.ResolveParams) (interface{}, error) {
	user, err := authenticate(p)
	if err != nil {
		return nil, fmt.Errorf("Delete Failed: %s", err)
	}
	list, ok := removeLicense(user.Profile.Licenses, argString(p.Args, "licenseId"))
	if !ok {
		return nil, fmt.Errorf("Delete Failed: License not found")
	}
	return saveProfile(p, user.ID, bson.M{"profile.licenses": list}, "Delete Failed")
}

func pushProfileRecord(p graphql.ResolveParams, userID, field string, record interface{}, prefix string) (interface{}, error) {
	var updated models.User
	after := options.After
	err := db.UsersCollection.FindOneAndUpdate(p.Context,
		bson.M{"_id": userID},
		bson.M{
			"$push": bson.M{field: record},
			"$set":  bson.M{"profile.updatedAt": time.Now()},
		},
		&options.FindOneAndUpdateOptions{ReturnDocument: &after},
	).Decode(&updated)
	if err != nil {
		return nil, fmt.Errorf("%s: %s", prefix, err)
	}
	return updated.Profile, nil
}

// The sub-record lists are small, so updates and deletes are a linear
// scan-and-replace over the embedded slice. Only the keys present in the
// input are applied.

func replaceExperience(list []models.Experience, id string, input map[string]interface{}) ([]models.Experience, bool) {
	for i := range list {
		if list[i].ID != id {
			continue
		}
		if v, ok := input["jobTitle"].(string); ok {
			list[i].JobTitle = v
		}
		if v, ok := input["institute"].(string); ok {
			list[i].Institute = v
		}
		if v, ok := input["startDate"].(time.Time); ok {
			list[i].StartDate = v
		}
		if v, ok := input["endDate"].(time.Time); ok {
			list[i].EndDate = v
		}
		return list, true
	}
	return list, false
}

func removeExperience(list []models.Experience, id string) ([]models.Experience, bool) {
	for i := range list {
		if list[i].ID == id {
			return append(list[:i:i], list[i+1:]...), true
		}
	}
	return list, false
}

func replaceEducation(list []models.Education, id string, input map[string]interface{}) ([]models.Education, bool) {
	for i := range list {
		if list[i].ID != id {
			continue
		}
		if v, ok := input["name"].(string); ok {
			list[i].Name = v
		}
		if v, ok := input["institute"].(string); ok {
			list[i].Institute = v
		}
		if v, ok := input["startDate"].(time.Time); ok {
			list[i].StartDate = v
		}
		if v, ok := input["endDate"].(time.Time); ok {
			list[i].EndDate = v
		}
		return list, true
	}
	return list, false
}

func removeEducation(list []models.Education, id string) ([]models.Education, bool) {
	for i := range list {
		if list[i].ID == id {
			return append(list[:i:i], list[i+1:]...), true
		}
	}
	return list, false
}

func replaceLicense(list []models.License, id string, input map[string]interface{}) ([]models.License, bool) {
	for i := range list {
		if list[i].ID != id {
			continue
		}
		if v, ok := input["number"].(string); ok {
			list[i].Number = v
		}
		if v, ok := input["name"].(string); ok {
			list[i].Name = v
		}
		if v, ok := input["issuedBy"].(string); ok {
			list[i].IssuedBy = v
		}
		if v, ok := input["issuedAt"].(time.Time); ok {
			list[i].IssuedAt = v
		}
		if v, ok := input["expiryDate"].(time.Time); ok {
			list[i].ExpiryDate = v
		}
		return list, true
	}
	return list, false
}

func removeLicense(list []models.License, id string) ([]models.License, bool) {
	for i := range list {
		if list[i].ID == id {
			return append(list[:i:i], list[i+1:]...), true
		}
	}
	return list, false
}
