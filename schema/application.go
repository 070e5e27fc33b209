package schema

import (
	"fmt"
	"time"

	"huntboard/db"
	"huntboard/models"
	"huntboard/utils"

	"github.com/graphql-go/graphql"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var taskType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Task",
	Fields: graphql.Fields{
		"_id":         &graphql.Field{Type: graphql.ID},
		"title":       &graphql.Field{Type: graphql.String},
		"description": &graphql.Field{Type: graphql.String},
		"completed":   &graphql.Field{Type: graphql.Boolean},
		"dueDate":     &graphql.Field{Type: dateType},
		"createdAt":   &graphql.Field{Type: dateType},
		"updatedAt":   &graphql.Field{Type: dateType},
	},
})

var applicationType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Application",
	Fields: graphql.Fields{
		"_id":                 &graphql.Field{Type: graphql.ID},
		"ownerId":             &graphql.Field{Type: graphql.ID},
		"collectionId":        &graphql.Field{Type: graphql.ID},
		"jobTitle":            &graphql.Field{Type: graphql.String},
		"description":         &graphql.Field{Type: graphql.String},
		"organizationName":    &graphql.Field{Type: graphql.String},
		"organizationAddress": &graphql.Field{Type: graphql.String},
		"organizationLogo":    &graphql.Field{Type: graphql.String},
		"location":            &graphql.Field{Type: graphql.String},
		"salary":              &graphql.Field{Type: graphql.Int},
		"type":                &graphql.Field{Type: graphql.String},
		"tasks":               &graphql.Field{Type: graphql.NewList(taskType)},
		"startDate":           &graphql.Field{Type: dateType},
		"endDate":             &graphql.Field{Type: dateType},
		"createdAt":           &graphql.Field{Type: dateType},
		"updatedAt":           &graphql.Field{Type: dateType},
	},
})

var applicationInput = graphql.NewInputObject(graphql.InputObjectConfig{
	Name: "ApplicationInput",
	Fields: graphql.InputObjectConfigFieldMap{
		"jobTitle":            &graphql.InputObjectFieldConfig{Type: graphql.String},
		"description":         &graphql.InputObjectFieldConfig{Type: graphql.String},
		"organizationName":    &graphql.InputObjectFieldConfig{Type: graphql.String},
		"organizationAddress": &graphql.InputObjectFieldConfig{Type: graphql.String},
		"organizationLogo":    &graphql.InputObjectFieldConfig{Type: graphql.String},
		"location":            &graphql.InputObjectFieldConfig{Type: graphql.String},
		"salary":              &graphql.InputObjectFieldConfig{Type: graphql.Int},
		"type":                &graphql.InputObjectFieldConfig{Type: graphql.String},
		"startDate":           &graphql.InputObjectFieldConfig{Type: dateType},
		"endDate":             &graphql.InputObjectFieldConfig{Type: dateType},
	},
})

var taskInput = graphql.NewInputObject(graphql.InputObjectConfig{
	Name: "TaskInput",
	Fields: graphql.InputObjectConfigFieldMap{
		"title":       &graphql.InputObjectFieldConfig{Type: graphql.String},
		"description": &graphql.InputObjectFieldConfig{Type: graphql.String},
		"completed":   &graphql.InputObjectFieldConfig{Type: graphql.Boolean},
		"dueDate":     &graphql.InputObjectFieldConfig{Type: dateType},
	},
})

func applicationQueryFields(deps Deps) graphql.Fields {
	return graphql.Fields{
		"getAllApplication": &graphql.Field{
			Type: graphql.NewList(applicationType),
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				user, err := authenticate(p)
				if err != nil {
					return nil, err
				}
				cur, err := db.ApplicationsCollection.Find(p.Context, bson.M{"ownerId": user.ID})
				if err != nil {
					return nil, err
				}
				var apps []models.Application
				if err := cur.All(p.Context, &apps); err != nil {
					return nil, err
				}
				return apps, nil
			},
		},
		"getApplicationById": &graphql.Field{
			Type: applicationType,
			Args: graphql.FieldConfigArgument{
				"_id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
			},
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				user, err := authenticate(p)
				if err != nil {
					return nil, err
				}
				app, err := findOwnedApplication(p, user.ID, argString(p.Args, "_id"))
				if err != nil {
					return nil, err
				}
				return *app, nil
			},
		},
		"getSortedByPriorityApplication": &graphql.Field{
			Type: applicationType,
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				user, err := authenticate(p)
				if err != nil {
					return nil, err
				}
				cur, err := db.ApplicationsCollection.Find(p.Context, bson.M{"ownerId": user.ID})
				if err != nil {
					return nil, err
				}
				var apps []models.Application
				if err := cur.All(p.Context, &apps); err != nil {
					return nil, err
				}
				top, ok := nearestPendingTask(apps, time.Now())
				if !ok {
					return nil, nil
				}
				return top, nil
			},
		},
		"getTasksGeneratedByAi": &graphql.Field{
			Type: graphql.NewList(taskType),
			Args: graphql.FieldConfigArgument{
				"_id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
			},
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				user, err := authenticate(p)
				if err != nil {
					return nil, err
				}
				app, err := findOwnedApplication(p, user.ID, argString(p.Args, "_id"))
				if err != nil {
					return nil, err
				}
				return deps.AI.GenerateTasks(p.Context, *user, *app)
			},
		},
		"getAdviceForApplicationByAi": &graphql.Field{
			Type: graphql.String,
			Args: graphql.FieldConfigArgument{
				"_id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
			},
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				user, err := authenticate(p)
				if err != nil {
					return nil, err
				}
				app, err := findOwnedApplication(p, user.ID, argString(p.Args, "_id"))
				if err != nil {
					return nil, err
				}
				return deps.AI.GenerateAdvice(p.Context, *user, *app)
			},
		},
	}
}

func applicationMutationFields() graphql.Fields {
	return graphql.Fields{
		"createApplication": &graphql.Field{
			Type: applicationType,
			Args: graphql.FieldConfigArgument{
				"input": &graphql.ArgumentConfig{Type: graphql.NewNonNull(applicationInput)},
			},
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				user, err := authenticate(p)
				if err != nil {
					return nil, err
				}
				input := argMap(p.Args, "input")
				now := time.Now()
				app := models.Application{
					ID:                  utils.NewID(),
					OwnerID:             user.ID,
					JobTitle:            argString(input, "jobTitle"),
					Description:         argString(input, "description"),
					OrganizationName:    argString(input, "organizationName"),
					OrganizationAddress: argString(input, "organizationAddress"),
					OrganizationLogo:    argString(input, "organizationLogo"),
					Location:            argString(input, "location"),
					Salary:              argInt(input, "salary", 0),
					Type:                argString(input, "type"),
					Tasks:               []models.Task{},
					StartDate:           argTime(input, "startDate"),
					EndDate:             argTime(input, "endDate"),
					CreatedAt:           now,
					UpdatedAt:           now,
				}
				if app.JobTitle == "" || app.OrganizationName == "" {
					return nil, fmt.Errorf("jobTitle and organizationName are required")
				}
				if _, err := db.ApplicationsCollection.InsertOne(p.Context, app); err != nil {
					return nil, err
				}
				return app, nil
			},
		},
		"updateApplication": &graphql.Field{
			Type: applicationType,
			Args: graphql.FieldConfigArgument{
				"_id":   &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
				"input": &graphql.ArgumentConfig{Type: graphql.NewNonNull(applicationInput)},
			},
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				user, err := authenticate(p)
				if err != nil {
					return nil, err
				}
				set := bson.M{"updatedAt": time.Now()}
				input := argMap(p.Args, "input")
				for _, field := range []string{
					"jobTitle", "description", "organizationName", "organizationAddress",
					"organizationLogo", "location", "type",
				} {
					if v, ok := input[field].(string); ok {
						set[field] = v
					}
				}
				if v, ok := input["salary"].(int); ok {
					set["salary"] = v
				}
				if v, ok := input["startDate"].(time.Time); ok {
					set["startDate"] = v
				}
				if v, ok := input["endDate"].(time.Time); ok {
					set["endDate"] = v
				}
				return saveApplication(p, user.ID, argString(p.Args, "_id"), bson.M{"$set": set})
			},
		},
		"deleteApplication": &graphql.Field{
			Type: applicationType,
			Args: graphql.FieldConfigArgument{
				"_id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
			},
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				user, err := authenticate(p)
				if err != nil {
					return nil, err
				}
				id := argString(p.Args, "_id")
				if !utils.ValidID(id) {
					return nil, fmt.Errorf("Application not found")
				}
				var deleted models.Application
				err = db.ApplicationsCollection.FindOneAndDelete(p.Context,
					bson.M{"_id": id, "ownerId": user.ID},
				).Decode(&deleted)
				if err == mongo.ErrNoDocuments {
					return nil, fmt.Errorf("Application not found")
				}
				if err != nil {
					return nil, err
				}
				// drop the stale reference if the application sat in a collection
				if deleted.CollectionID != "" {
					_, err := db.CollectionsCollection.UpdateOne(p.Context,
						bson.M{"_id": deleted.CollectionID},
						bson.M{"$pull": bson.M{"applications": deleted.ID}},
					)
					if err != nil {
						return nil, err
					}
				}
				return deleted, nil
			},
		},
		"addTaskToApplication": &graphql.Field{
			Type: applicationType,
			Args: graphql.FieldConfigArgument{
				"applicationId": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
				"task":          &graphql.ArgumentConfig{Type: graphql.NewNonNull(taskInput)},
			},
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				user, err := authenticate(p)
				if err != nil {
					return nil, err
				}
				input := argMap(p.Args, "task")
				now := time.Now()
				task := models.Task{
					ID:          utils.NewID(),
					Title:       argString(input, "title"),
					Description: argString(input, "description"),
					Completed:   argBool(input, "completed"),
					DueDate:     argTime(input, "dueDate"),
					CreatedAt:   now,
					UpdatedAt:   now,
				}
				if task.Title == "" {
					return nil, fmt.Errorf("title is required")
				}
				return saveApplication(p, user.ID, argString(p.Args, "applicationId"), bson.M{
					"$push": bson.M{"tasks": task},
					"$set":  bson.M{"updatedAt": now},
				})
			},
		},
		"updateTaskInApplication": &graphql.Field{
			Type: applicationType,
			Args: graphql.FieldConfigArgument{
				"applicationId": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
				"taskId":        &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
				"task":          &graphql.ArgumentConfig{Type: graphql.NewNonNull(taskInput)},
			},
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				user, err := authenticate(p)
				if err != nil {
					return nil, err
				}
				app, err := findOwnedApplication(p, user.ID, argString(p.Args, "applicationId"))
				if err != nil {
					return nil, err
				}
				tasks, ok := replaceTask(app.Tasks, argString(p.Args, "taskId"), argMap(p.Args, "task"), time.Now())
				if !ok {
					return nil, fmt.Errorf("Task not found")
				}
				return saveApplication(p, user.ID, app.ID, bson.M{
					"$set": bson.M{"tasks": tasks, "updatedAt": time.Now()},
				})
			},
		},
		"removeTaskFromApplication": &graphql.Field{
			Type: applicationType,
			Args: graphql.FieldConfigArgument{
				"applicationId": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
				"taskId":        &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
			},
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				user, err := authenticate(p)
				if err != nil {
					return nil, err
				}
				app, err := findOwnedApplication(p, user.ID, argString(p.Args, "applicationId"))
				if err != nil {
					return nil, err
				}
				tasks, ok := removeTask(app.Tasks, argString(p.Args, "taskId"))
				if !ok {
					return nil, fmt.Errorf("Task not found")
				}
				return saveApplication(p, user.ID, app.ID, bson.M{
					"$set": bson.M{"tasks": tasks, "updatedAt": time.Now()},
				})
			},
		},
	}
}

// findOwnedApplication loads an application scoped to its owner; documents
// belonging to other users read as absent.
func findOwnedApplication(p graphql.ResolveParams, ownerID, id string) (*models.Application, error) {
	if !utils.ValidID(id) {
		return nil, fmt.Errorf("Application not found")
	}
	var app models.Application
	err := db.ApplicationsCollection.FindOne(p.Context, bson.M{"_id": id, "ownerId": ownerID}).Decode(&app)
	if err == mongo.ErrNoDocuments {
		return nil, fmt.Errorf("Application not found")
	}
	if err != nil {
		return nil, err
	}
	return &app, nil
}

func saveApplication(p graphql.ResolveParams, ownerID, id string, update bson.M) (interface{}, error) {
	if !utils.ValidID(id) {
		return nil, fmt.Errorf("Application not found")
	}
	var updated models.Application
	after := options.After
	err := db.ApplicationsCollection.FindOneAndUpdate(p.Context,
		bson.M{"_id": id, "ownerId": ownerID},
		update,
		&options.FindOneAndUpdateOptions{ReturnDocument: &after},
	).Decode(&updated)
	if err == mongo.ErrNoDocuments {
		return nil, fmt.Errorf("Application not found")
	}
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// replaceTask applies the provided keys to the matching task and stamps
// updatedAt. Reports false when no task carries the id.
func replaceTask(tasks []models.Task, id string, input map[string]interface{}, now time.Time) ([]models.Task, bool) {
	for i := range tasks {
		if tasks[i].ID != id {
			continue
		}
		if v, ok := input["title"].(string); ok {
			tasks[i].Title = v
		}
		if v, ok := input["description"].(string); ok {
			tasks[i].Description = v
		}
		if v, ok := input["completed"].(bool); ok {
			tasks[i].Completed = v
		}
		if v, ok := input["dueDate"].(time.Time); ok {
			tasks[i].DueDate = v
		}
		tasks[i].UpdatedAt = now
		return tasks, true
	}
	return tasks, false
}

func removeTask(tasks []models.Task, id string) ([]models.Task, bool) {
	for i := range tasks {
		if tasks[i].ID == id {
			return append(tasks[:i:i], tasks[i+1:]...), true
		}
	}
	return tasks, false
}

// nearestPendingTask picks the application owning the incomplete task whose
// due date is closest in the future, and returns it with only that task.
// Ties keep the first application encountered.
func nearestPendingTask(apps []models.Application, now time.Time) (models.Application, bool) {
	var (
		best     models.Application
		bestTask models.Task
		found    bool
	)
	for _, app := range apps {
		for _, task := range app.Tasks {
			if task.Completed || task.DueDate.IsZero() || task.DueDate.Before(now) {
				continue
			}
			if !found || task.DueDate.Before(bestTask.DueDate) {
				best = app
				bestTask = task
				found = true
			}
		}
	}
	if !found {
		return models.Application{}, false
	}
	best.Tasks = []models.Task{bestTask}
	return best, true
}
