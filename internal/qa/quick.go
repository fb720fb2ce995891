package qa

import (
	"context"
	"sort"
)

// Canned questions offered as one-click actions.
var quickActions = map[string]string{
	"summary-chart": "Create a pie chart showing the main topics or categories in this content",
	"data-trends":   "Create a bar chart showing any numerical data or statistics from this content",
	"key-insights":  "What are the key insights and main points from this content?",
}

// QuickQuestion returns the question behind a quick action.
func QuickQuestion(action string) (string, error) {
	q, ok := quickActions[action]
	if !ok {
		return "", ErrUnknownAction
	}
	return q, nil
}

// QuickActions lists the action names in sorted order.
func QuickActions() []string {
	names := make([]string, 0, len(quickActions))
	for name := range quickActions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Quick answers the canned question for action.
func (a *Assistant) Quick(ctx context.Context, content, action string) (*Answer, error) {
	q, err := QuickQuestion(action)
	if err != nil {
		return nil, err
	}
	return a.Answer(ctx, content, q)
}
