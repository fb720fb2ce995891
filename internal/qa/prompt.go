package qa

const reorganizeSystemPrompt = "You are a reorganizer. Return the content in Markdown, keeping it identical. " +
	"Do not delete or replace anything—only reorganize for better structure. " +
	"your response the content direct without (``` ```)."

const reorganizeUserPrefix = "reorganize the following content:\n "

const answerSystemPrompt = `You are an assistant that answers questions from provided content.

If the user asks for charts, graphs, or visualizations:
1. First provide a text answer
2. Then provide data in JSON format for visualization
3. Use this format: [CHART_DATA]{json_data}[/CHART_DATA]

For pie charts, use: {"type": "pie", "labels": ["label1", "label2"], "values": [value1, value2], "title": "Chart Title"}
For bar charts, use: {"type": "bar", "x": ["item1", "item2"], "y": [value1, value2], "title": "Chart Title"}
For line charts, use: {"type": "line", "x": ["point1", "point2"], "y": [value1, value2], "title": "Chart Title"}

Answer from the following content:
 `

// BuildAnswerPrompt returns the system prompt for answering questions about
// content.
func BuildAnswerPrompt(content string) string {
	return answerSystemPrompt + content
}
