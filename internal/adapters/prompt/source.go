// Package prompt generates the synthetic chat messages the bot sends. The
// pools are deliberately varied so consecutive sends don't look templated.
package prompt

import (
	"fmt"
	"math/rand/v2"

	"klokfarm/internal/ports"
)

var topics = []string{
	"artificial intelligence",
	"machine learning",
	"technology",
	"science",
	"nature",
	"philosophy",
	"art",
	"music",
	"history",
	"literature",
	"psychology",
	"space exploration",
	"quantum computing",
	"economics",
	"cryptocurrency",
	"sustainable energy",
	"ancient civilizations",
	"modern architecture",
	"robotics",
	"health and wellness",
}

var topicTemplates = []string{
	"What do you think about %s?",
	"Can you tell me something interesting about %s?",
	"How has %s changed in recent years?",
	"Why is %s important?",
	"What's your favorite aspect of %s?",
	"How do you see %s evolving in the future?",
	"What impact does %s have on our daily lives?",
	"Who are some key figures in the field of %s?",
	"What's a common misconception about %s?",
	"How can someone start learning about %s?",
}

var conversationalPrompts = []string{
	"Tell me something I might not know.",
	"What's the most interesting thing you've learned recently?",
	"If you could solve one global problem, what would it be?",
	"What's a book or article that changed your perspective?",
	"What's a common misconception many people have?",
	"How would you explain complex ideas to someone new to the topic?",
	"What advancements do you think we'll see in the next decade?",
	"What's a skill everyone should learn?",
	"How do you approach learning something new?",
	"What makes a good conversation in your opinion?",
	"If you could meet any historical figure, who would it be and why?",
	"What's an underrated invention that changed the world?",
	"How do you define success?",
	"What's a topic you could talk about for hours?",
	"If you could instantly master one subject, what would it be?",
	"What's the best piece of advice you've ever received?",
}

var funFacts = []string{
	"Did you know octopuses have three hearts?",
	"The Eiffel Tower can grow taller in the summer due to heat expansion.",
	"Bananas are berries, but strawberries aren't.",
	"Sharks have been around longer than trees.",
	"Honey never spoils, it can last thousands of years.",
	"Water can boil and freeze at the same time in a process called the 'triple point'.",
	"A day on Venus is longer than a year on Venus.",
	"Sloths can hold their breath longer than dolphins can.",
	"Butterflies can taste with their feet.",
	"A group of flamingos is called a 'flamboyance'.",
	"The moon is slowly drifting away from Earth at a rate of 3.8 cm per year.",
	"A single cloud can weigh more than a million pounds.",
	"Wombat poop is cube-shaped.",
	"Cows have best friends and get stressed when separated from them.",
}

var codingPrompts = []string{
	"What's the most useful algorithm every programmer should know?",
	"How do you approach debugging a complex bug in your code?",
	"What's your favorite programming language and why?",
	"If you could remove one bad coding practice forever, what would it be?",
	"How do you keep up with new programming trends and technologies?",
	"What's a common mistake junior developers often make?",
	"How would you explain asynchronous programming to a beginner?",
	"How do you handle technical debt in a long-term project?",
	"What's the best way to write clean and maintainable code?",
	"How do you choose between SQL and NoSQL databases for a project?",
	"What's the best way to handle rate limiting in an API to prevent abuse?",
	"What are some best practices for designing RESTful APIs?",
	"How do you handle background jobs and task scheduling efficiently?",
	"What's the difference between monolithic and microservices architectures?",
}

type Source struct {
	pick func(n int) int
}

var _ ports.PromptSource = (*Source)(nil)

func NewSource() *Source {
	return &Source{pick: rand.IntN}
}

func (s *Source) Next() string {
	switch s.pick(4) {
	case 0:
		topic := topics[s.pick(len(topics))]
		return fmt.Sprintf(topicTemplates[s.pick(len(topicTemplates))], topic)
	case 1:
		return conversationalPrompts[s.pick(len(conversationalPrompts))]
	case 2:
		return funFacts[s.pick(len(funFacts))]
	default:
		return codingPrompts[s.pick(len(codingPrompts))]
	}
}
